package value

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedType indicates a Go value has no document representation.
var ErrUnsupportedType = errors.New("unsupported type")

// FromGo converts a plain Go value into a Value.
//
// Supported inputs are nil, bool, the integer and float types, string,
// []any, []string, map[string]any, map[string]string and Value itself.
// Map keys are imported in sorted order.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v.Clone(), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Number(float64(v)), nil
	case uint8:
		return Number(float64(v)), nil
	case uint16:
		return Number(float64(v)), nil
	case uint32:
		return Number(float64(v)), nil
	case uint64:
		return Number(float64(v)), nil
	case float32:
		return Number(float64(v)), nil
	case float64:
		return Number(v), nil
	case string:
		return String(v), nil
	case []string:
		a := &Array{elems: make([]Value, 0, len(v))}
		for _, s := range v {
			a.elems = append(a.elems, String(s))
		}
		return FromArray(a), nil
	case []any:
		a := &Array{elems: make([]Value, 0, len(v))}
		for i, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			a.elems = append(a.elems, ev)
		}
		return FromArray(a), nil
	case map[string]string:
		o := newObject(len(v))
		for _, k := range sortedKeys(v) {
			o.Set(k, String(v[k]))
		}
		return FromObject(o), nil
	case map[string]any:
		o := newObject(len(v))
		for _, k := range sortedKeys(v) {
			ev, err := FromGo(v[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			o.Set(k, ev)
		}
		return FromObject(o), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, x)
	}
}

// MustFromGo is like FromGo but panics on error.
// It is intended for literals in tests and examples.
func MustFromGo(x any) Value {
	v, err := FromGo(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToGo converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v Value) ToGo() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr.elems))
		for i, e := range v.arr.elems {
			out[i] = e.ToGo()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj.keys))
		for _, k := range v.obj.keys {
			out[k] = v.obj.fields[k].ToGo()
		}
		return out
	default:
		return nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
