package engine

import (
	"io"

	"github.com/dshills/jsondoc/internal/logging"
)

// DefaultHistoryLimit is the default number of undo entries kept.
// Zero means unlimited.
const DefaultHistoryLimit = 0

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger for commit traces and observer failures.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHistoryLimit caps the number of undo entries. The oldest entries are
// dropped first.
func WithHistoryLimit(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.historyLimit = max
		}
	}
}

// WithOutput sets where Log writes. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.output = w
		}
	}
}

// WithColor enables ANSI colors in Log output.
func WithColor(enabled bool) Option {
	return func(e *Engine) {
		e.color = enabled
	}
}

// WithReadOnly creates a read-only engine.
// Set, Delete, Undo and Redo return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
