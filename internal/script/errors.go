package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a script runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrUnsupportedValue is returned for Lua values with no document
	// representation, such as functions.
	ErrUnsupportedValue = errors.New("unsupported lua value")

	// ErrCyclicTable is returned when converting a table that contains itself.
	ErrCyclicTable = errors.New("cyclic lua table")
)
