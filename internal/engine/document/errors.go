package document

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrInvalidPath indicates an empty path or an empty path segment.
	ErrInvalidPath = errors.New("invalid path")

	// ErrMissingSegment indicates an intermediate path segment does not exist.
	ErrMissingSegment = errors.New("missing path segment")

	// ErrKeyNotFound indicates the final path segment does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrNotAnObject indicates an intermediate segment holds a scalar.
	ErrNotAnObject = errors.New("not an object")

	// ErrIndexOutOfRange indicates a write past the end of an array.
	ErrIndexOutOfRange = errors.New("array index out of range")

	// ErrInvalidRoot indicates the document root is not an object or array.
	ErrInvalidRoot = errors.New("document root must be an object or array")
)

// PathError records a failed path operation.
type PathError struct {
	// Op is the operation that failed (get, set, delete, restore).
	Op string
	// Path is the full path being resolved.
	Path string
	// Segment is the segment at which resolution failed, if any.
	Segment string
	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s %q: segment %q: %v", e.Op, e.Path, e.Segment, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
