package document

import (
	"strconv"
	"strings"

	"github.com/dshills/jsondoc/internal/engine/value"
)

// Separator joins path segments.
const Separator = "."

// SplitPath splits a dotted path into its segments.
// It fails with ErrInvalidPath if the path or any segment is empty.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	segments := strings.Split(path, Separator)
	for _, seg := range segments {
		if seg == "" {
			return nil, ErrInvalidPath
		}
	}
	return segments, nil
}

// JoinPath joins segments into a dotted path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, Separator)
}

// IsDescendant reports whether path lies strictly below ancestor.
// Every non-empty path is a descendant of the empty root path.
func IsDescendant(path, ancestor string) bool {
	if ancestor == "" {
		return path != ""
	}
	return len(path) > len(ancestor) &&
		path[len(ancestor)] == '.' &&
		path[:len(ancestor)] == ancestor
}

// parseIndex parses an array index segment.
// Leading zeros, signs and non-digits are rejected.
func parseIndex(seg string) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// lookup returns the child of container named by seg.
// Array segments that are not indexes fail with ErrInvalidPath; an index
// at or beyond the end is reported as absent.
func lookup(container value.Value, seg string) (value.Value, bool, error) {
	if obj, ok := container.AsObject(); ok {
		v, found := obj.Get(seg)
		return v, found, nil
	}
	if arr, ok := container.AsArray(); ok {
		idx, ok := parseIndex(seg)
		if !ok {
			return value.Value{}, false, ErrInvalidPath
		}
		v, found := arr.At(idx)
		return v, found, nil
	}
	return value.Value{}, false, ErrNotAnObject
}

// insertChild stores a new child under seg. Arrays accept only the
// append slot so that no holes are created.
func insertChild(container value.Value, seg string, child value.Value) error {
	if obj, ok := container.AsObject(); ok {
		obj.Set(seg, child)
		return nil
	}
	arr, _ := container.AsArray()
	idx, _ := parseIndex(seg)
	if idx != arr.Len() {
		return ErrIndexOutOfRange
	}
	arr.Append(child)
	return nil
}

// resolveParent walks root to the container holding the final segment of
// path. With createMissing, absent intermediate segments are filled with
// empty objects. The final key itself is never created.
//
// Only segments that already exist can fail: once a missing segment is
// created, every later segment descends into a fresh object.
func resolveParent(op string, root value.Value, path string, createMissing bool) (value.Value, string, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return value.Value{}, "", &PathError{Op: op, Path: path, Err: err}
	}

	current := root
	for _, seg := range segments[:len(segments)-1] {
		child, found, err := lookup(current, seg)
		if err != nil {
			return value.Value{}, "", &PathError{Op: op, Path: path, Segment: seg, Err: err}
		}
		if found {
			if !child.IsContainer() {
				return value.Value{}, "", &PathError{Op: op, Path: path, Segment: seg, Err: ErrNotAnObject}
			}
			current = child
			continue
		}
		if !createMissing {
			return value.Value{}, "", &PathError{Op: op, Path: path, Segment: seg, Err: ErrMissingSegment}
		}
		child = value.NewObject()
		if err := insertChild(current, seg, child); err != nil {
			return value.Value{}, "", &PathError{Op: op, Path: path, Segment: seg, Err: err}
		}
		current = child
	}

	return current, segments[len(segments)-1], nil
}
