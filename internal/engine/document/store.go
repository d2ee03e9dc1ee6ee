package document

import (
	"io"

	"github.com/tidwall/pretty"

	"github.com/dshills/jsondoc/internal/engine/value"
)

// Store owns a document tree and applies raw mutations to it.
//
// Store records no history and sends no notifications; it only reports
// what changed. Values passed in are cloned before being written and
// values handed out are clones, so no alias into the tree escapes.
type Store struct {
	root value.Value
}

// NewStore creates a store holding a deep copy of root.
// The root must be an object or an array.
func NewStore(root value.Value) (*Store, error) {
	if !root.IsContainer() {
		return nil, ErrInvalidRoot
	}
	return &Store{root: root.Clone()}, nil
}

// Get returns a copy of the value at path.
func (s *Store) Get(path string) (value.Value, error) {
	parent, key, err := resolveParent("get", s.root, path, false)
	if err != nil {
		return value.Value{}, err
	}
	v, found, err := lookup(parent, key)
	if err != nil {
		return value.Value{}, &PathError{Op: "get", Path: path, Segment: key, Err: err}
	}
	if !found {
		return value.Value{}, &PathError{Op: "get", Path: path, Segment: key, Err: ErrKeyNotFound}
	}
	return v.Clone(), nil
}

// Has reports whether a value exists at path.
func (s *Store) Has(path string) bool {
	parent, key, err := resolveParent("get", s.root, path, false)
	if err != nil {
		return false
	}
	_, found, err := lookup(parent, key)
	return err == nil && found
}

// RawSet writes v at path, creating missing intermediate objects.
//
// It returns a nil change when the key exists and already holds the same
// value (see value.SameValue). Writing an array index equal to the array
// length appends.
func (s *Store) RawSet(path string, v value.Value) (*Change, error) {
	parent, key, err := resolveParent("set", s.root, path, true)
	if err != nil {
		return nil, err
	}

	if obj, ok := parent.AsObject(); ok {
		old, existed := obj.Get(key)
		if existed && value.SameValue(old, v) {
			return nil, nil
		}
		obj.Set(key, v.Clone())
		return newSetChange(path, old, v, existed), nil
	}

	arr, _ := parent.AsArray()
	idx, ok := parseIndex(key)
	if !ok {
		return nil, &PathError{Op: "set", Path: path, Segment: key, Err: ErrInvalidPath}
	}
	switch {
	case idx < arr.Len():
		old, _ := arr.At(idx)
		if value.SameValue(old, v) {
			return nil, nil
		}
		arr.Set(idx, v.Clone())
		return newSetChange(path, old, v, true), nil
	case idx == arr.Len():
		arr.Append(v.Clone())
		return newSetChange(path, value.Value{}, v, false), nil
	default:
		return nil, &PathError{Op: "set", Path: path, Segment: key, Err: ErrIndexOutOfRange}
	}
}

func newSetChange(path string, old, v value.Value, existed bool) *Change {
	if existed {
		return &Change{Kind: ChangeUpdate, Path: path, OldValue: old, NewValue: v.Clone()}
	}
	return &Change{Kind: ChangeAdd, Path: path, NewValue: v.Clone()}
}

// RawDelete removes the value at path. Array elements after the removed
// one shift down.
func (s *Store) RawDelete(path string) (*Change, error) {
	parent, key, err := resolveParent("delete", s.root, path, false)
	if err != nil {
		return nil, err
	}

	var (
		old   value.Value
		found bool
	)
	if obj, ok := parent.AsObject(); ok {
		old, found = obj.Delete(key)
	} else {
		arr, _ := parent.AsArray()
		idx, ok := parseIndex(key)
		if !ok {
			return nil, &PathError{Op: "delete", Path: path, Segment: key, Err: ErrInvalidPath}
		}
		old, found = arr.Remove(idx)
	}
	if !found {
		return nil, &PathError{Op: "delete", Path: path, Segment: key, Err: ErrKeyNotFound}
	}
	return &Change{Kind: ChangeDelete, Path: path, OldValue: old}, nil
}

// Restore puts back a value removed by RawDelete. On objects this sets the
// key; on arrays it inserts at the index, shifting later elements up.
func (s *Store) Restore(path string, v value.Value) (*Change, error) {
	parent, key, err := resolveParent("restore", s.root, path, true)
	if err != nil {
		return nil, err
	}

	if arr, ok := parent.AsArray(); ok {
		idx, ok := parseIndex(key)
		if !ok {
			return nil, &PathError{Op: "restore", Path: path, Segment: key, Err: ErrInvalidPath}
		}
		if !arr.Insert(idx, v.Clone()) {
			return nil, &PathError{Op: "restore", Path: path, Segment: key, Err: ErrIndexOutOfRange}
		}
		return &Change{Kind: ChangeAdd, Path: path, NewValue: v.Clone()}, nil
	}

	obj, _ := parent.AsObject()
	old, existed := obj.Set(key, v.Clone())
	return newSetChange(path, old, v, existed), nil
}

// Snapshot returns a deep copy of the whole document.
func (s *Store) Snapshot() value.Value {
	return s.root.Clone()
}

// Dump writes an indented rendering of the document to w, with ANSI
// colors when color is set. The format is for debugging only.
func (s *Store) Dump(w io.Writer, color bool) error {
	raw, err := s.root.MarshalJSON()
	if err != nil {
		return err
	}
	out := pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "})
	if color {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}
