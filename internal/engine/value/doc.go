// Package value provides the tagged-union value type stored in a document.
//
// A Value is one of Null, Bool, Number, String, Array or Object. The zero
// Value is Null. Arrays and objects are reference types: copying a Value
// that holds a container copies the reference, not the contents. Use Clone
// to obtain an independent deep copy.
//
// # Comparison
//
// Two comparisons are provided:
//
//   - SameValue is strict same-value equality. Numbers distinguish +0 and -0
//     and treat NaN as equal to itself. Containers compare element by element,
//     and object keys must be in the same order.
//   - Equal is deep structural equality.
//
// # Objects
//
// Object keeps keys in insertion order so renderings are deterministic:
//
//	obj := value.NewObject(
//	    value.Field("name", value.String("x")),
//	    value.Field("size", value.Int(3)),
//	)
//	obj.String() // {"name":"x","size":3}
package value
