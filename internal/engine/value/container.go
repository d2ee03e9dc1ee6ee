package value

// Member is a key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// Field returns a Member for NewObject.
func Field(key string, v Value) Member {
	return Member{Key: key, Value: v}
}

// Object is an insertion-ordered mapping from strings to values.
type Object struct {
	keys   []string
	fields map[string]Value
}

func newObject(capacity int) *Object {
	return &Object{
		keys:   make([]string, 0, capacity),
		fields: make(map[string]Value, capacity),
	}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// Set stores v under key and returns the previous value, if any.
// A new key is appended to the key order; an existing key keeps its place.
func (o *Object) Set(key string, v Value) (Value, bool) {
	old, existed := o.fields[key]
	if !existed {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
	return old, existed
}

// Delete removes key and returns its value.
func (o *Object) Delete(key string) (Value, bool) {
	old, ok := o.fields[key]
	if !ok {
		return Value{}, false
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return old, true
}

// Range calls fn for each member in key order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Array is an ordered list of values.
type Array struct {
	elems []Value
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.elems)
}

// At returns the element at index i.
func (a *Array) At(i int) (Value, bool) {
	if i < 0 || i >= len(a.elems) {
		return Value{}, false
	}
	return a.elems[i], true
}

// Set replaces the element at index i and returns the previous element.
// It reports false if i is out of range.
func (a *Array) Set(i int, v Value) (Value, bool) {
	if i < 0 || i >= len(a.elems) {
		return Value{}, false
	}
	old := a.elems[i]
	a.elems[i] = v
	return old, true
}

// Append adds v at the end.
func (a *Array) Append(v Value) {
	a.elems = append(a.elems, v)
}

// Insert places v at index i, shifting later elements up.
// i may equal Len. It reports false if i is out of range.
func (a *Array) Insert(i int, v Value) bool {
	if i < 0 || i > len(a.elems) {
		return false
	}
	a.elems = append(a.elems, Value{})
	copy(a.elems[i+1:], a.elems[i:])
	a.elems[i] = v
	return true
}

// Remove deletes the element at index i, shifting later elements down.
func (a *Array) Remove(i int) (Value, bool) {
	if i < 0 || i >= len(a.elems) {
		return Value{}, false
	}
	old := a.elems[i]
	a.elems = append(a.elems[:i], a.elems[i+1:]...)
	return old, true
}

// Values returns a shallow copy of the elements.
func (a *Array) Values() []Value {
	out := make([]Value, len(a.elems))
	copy(out, a.elems)
	return out
}
