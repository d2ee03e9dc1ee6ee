// Package document provides path-addressed storage for a value tree.
//
// Paths are dot-separated key sequences such as "server.ports.0". Object
// segments name keys; array segments are decimal indexes. The Store
// resolves a path to the container holding its final segment and applies
// raw mutations there, reporting each mutation as a Change:
//
//	store, _ := document.NewStore(value.NewObject())
//	change, _ := store.RawSet("a.b.c", value.Int(3)) // creates a and a.b
//	change.Kind                                      // ChangeAdd
//
// RawSet returns a nil change when the key already holds the same value.
// The store keeps no history and notifies nobody; those concerns belong to
// the history and notify packages.
package document
