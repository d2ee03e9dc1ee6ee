// Package engine provides the path-addressable document engine for jsondoc.
//
// The engine package serves as the main facade, combining the document
// store, change notification and undo/redo history into one API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - value: tagged union of null, bool, number, string, array and object
//   - document: path resolution and raw mutations that report a Change
//   - notify: observers scoped by path prefix
//   - history: command-based undo/redo with batches
//
// # Basic Usage
//
//	e, _ := engine.New(value.NewObject(value.Field("a", value.Int(1))))
//
//	e.Set("b.c.d", value.Int(3)) // {"a":1,"b":{"c":{"d":3}}}
//	v, _ := e.Get("b.c.d")       // 3
//	e.Delete("b.c.d")            // {"a":1,"b":{"c":{}}}
//	e.Undo()                     // {"a":1,"b":{"c":{"d":3}}}
//
// Paths are dot separated. Arrays are addressed by decimal index, and
// writing at the index equal to the array length appends.
//
// # Observers
//
// Observers are registered under path prefixes. A prefix receives changes
// at the prefix itself, below it, and above it:
//
//	sub, _ := e.OnChange(func(c engine.Change) error {
//	    fmt.Println(c)
//	    return nil
//	}, "user")
//
//	e.Set("user.name", value.String("ada")) // delivered
//	e.Set("user", value.NewObject())        // delivered
//	e.Set("other", value.Int(1))            // not delivered
//
//	e.OffChange(sub, "user")
//
// Observers run synchronously. Errors and panics from observers are logged
// and never reach the caller that made the change.
//
// # Batches
//
// Batch groups several edits into one undo entry and one notification:
//
//	err := e.Batch(func() error {
//	    e.Set("a", value.Int(1))
//	    e.Set("b", value.Int(2))
//	    return nil
//	})
//
// If the function returns an error, its edits are rolled back and nobody
// is notified. Nested batches join the enclosing batch.
//
// # Thread Safety
//
// An Engine is not safe for concurrent use. It is re-entrant: observers may
// call any engine method, and changes they make are dispatched before the
// call that triggered them returns.
package engine
