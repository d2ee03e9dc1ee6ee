package engine

import (
	"errors"

	"github.com/dshills/jsondoc/internal/engine/document"
	"github.com/dshills/jsondoc/internal/engine/notify"
)

// Errors returned by engine operations.
var (
	// ErrBatchActive indicates undo or redo was attempted inside a batch.
	ErrBatchActive = errors.New("batch in progress")

	// ErrReadOnly indicates an operation was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")
)

// Re-exported errors from the document and notify packages.
var (
	ErrInvalidPath     = document.ErrInvalidPath
	ErrMissingSegment  = document.ErrMissingSegment
	ErrKeyNotFound     = document.ErrKeyNotFound
	ErrNotAnObject     = document.ErrNotAnObject
	ErrIndexOutOfRange = document.ErrIndexOutOfRange
	ErrInvalidRoot     = document.ErrInvalidRoot
	ErrInvalidListener = notify.ErrInvalidListener
)
