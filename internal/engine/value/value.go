package value

import (
	"math"
	"slices"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is the null value. It is the zero Kind.
	KindNull Kind = iota
	// KindBool is a boolean.
	KindBool
	// KindNumber is a 64-bit floating point number.
	KindNumber
	// KindString is a string.
	KindString
	// KindArray is an ordered list of values.
	KindArray
	// KindObject is a mapping from string keys to values.
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON-like value.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  *Array
	obj  *Object
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// Int returns a numeric value from an integer.
func Int(i int64) Value {
	return Value{kind: KindNumber, n: float64(i)}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// NewArray returns an array value holding elems.
// The elements are stored as given, not cloned.
func NewArray(elems ...Value) Value {
	a := &Array{elems: make([]Value, len(elems))}
	copy(a.elems, elems)
	return Value{kind: KindArray, arr: a}
}

// NewObject returns an object value holding fields in order.
// A repeated key keeps its first position and its last value.
func NewObject(fields ...Member) Value {
	o := newObject(len(fields))
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return Value{kind: KindObject, obj: o}
}

// FromArray wraps an existing array.
func FromArray(a *Array) Value {
	if a == nil {
		a = &Array{}
	}
	return Value{kind: KindArray, arr: a}
}

// FromObject wraps an existing object.
func FromObject(o *Object) Value {
	if o == nil {
		o = newObject(0)
	}
	return Value{kind: KindObject, obj: o}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool {
	return v.kind == KindArray || v.kind == KindObject
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsArray returns the array held by v.
// The returned array is live: mutating it mutates v.
func (v Value) AsArray() (*Array, bool) {
	return v.arr, v.kind == KindArray
}

// AsObject returns the object held by v.
// The returned object is live: mutating it mutates v.
func (v Value) AsObject() (*Object, bool) {
	return v.obj, v.kind == KindObject
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		a := &Array{elems: make([]Value, len(v.arr.elems))}
		for i, e := range v.arr.elems {
			a.elems[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: a}
	case KindObject:
		o := newObject(len(v.obj.keys))
		for _, k := range v.obj.keys {
			o.keys = append(o.keys, k)
			o.fields[k] = v.obj.fields[k].Clone()
		}
		return Value{kind: KindObject, obj: o}
	default:
		return v
	}
}

// String returns a compact JSON rendering of v.
func (v Value) String() string {
	return string(v.appendJSON(nil))
}

// SameValue reports whether a and b are the same value.
//
// Scalars compare by value, except that +0 and -0 differ and NaN equals
// NaN. Arrays and objects are the same when they hold the same values
// under the same rules, with object keys in the same order.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return sameNumber(a.n, b.n)
	case KindString:
		return a.s == b.s
	case KindArray:
		if a.arr == b.arr {
			return true
		}
		if len(a.arr.elems) != len(b.arr.elems) {
			return false
		}
		for i := range a.arr.elems {
			if !SameValue(a.arr.elems[i], b.arr.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj == b.obj {
			return true
		}
		if !slices.Equal(a.obj.keys, b.obj.keys) {
			return false
		}
		for _, k := range a.obj.keys {
			if !SameValue(a.obj.fields[k], b.obj.fields[k]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sameNumber(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.IsNaN(x) && math.IsNaN(y)
	}
	if x == 0 && y == 0 {
		return math.Signbit(x) == math.Signbit(y)
	}
	return x == y
}

// Equal reports whether a and b are deeply equal.
// Object key order is not significant. NaN equals NaN.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n || (math.IsNaN(a.n) && math.IsNaN(b.n))
	case KindString:
		return a.s == b.s
	case KindArray:
		if a.arr == b.arr {
			return true
		}
		if len(a.arr.elems) != len(b.arr.elems) {
			return false
		}
		for i := range a.arr.elems {
			if !Equal(a.arr.elems[i], b.arr.elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj == b.obj {
			return true
		}
		if len(a.obj.keys) != len(b.obj.keys) {
			return false
		}
		for k, av := range a.obj.fields {
			bv, ok := b.obj.fields[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
