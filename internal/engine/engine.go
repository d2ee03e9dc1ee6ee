package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dshills/jsondoc/internal/engine/document"
	"github.com/dshills/jsondoc/internal/engine/history"
	"github.com/dshills/jsondoc/internal/engine/notify"
	"github.com/dshills/jsondoc/internal/engine/value"
	"github.com/dshills/jsondoc/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// Value is a document value.
	Value = value.Value

	// Change describes one mutation of the document.
	Change = document.Change

	// ChangeKind categorizes changes.
	ChangeKind = document.ChangeKind

	// Observer receives dispatched changes.
	Observer = notify.Observer

	// Subscription is a registered observer.
	Subscription = notify.Subscription

	// EntryInfo describes an undo or redo entry.
	EntryInfo = history.EntryInfo
)

// Re-export constants.
const (
	ChangeAdd    = document.ChangeAdd
	ChangeUpdate = document.ChangeUpdate
	ChangeDelete = document.ChangeDelete
	ChangeBatch  = document.ChangeBatch
)

// Engine is a path-addressable document with change notification and
// undo/redo.
//
// Engine is single-threaded: it is not safe for concurrent use, but it is
// re-entrant. Observers run synchronously inside the mutating call and may
// read and mutate the engine; the changes they make are dispatched before
// the outer call returns.
type Engine struct {
	store    *document.Store
	history  *history.History
	notifier *notify.Notifier
	logger   *logging.Logger

	// Configuration
	historyLimit int
	output       io.Writer
	color        bool
	readOnly     bool
}

// New creates an engine holding a deep copy of initial, which must be an
// object or an array. A null initial value starts an empty object.
func New(initial Value, opts ...Option) (*Engine, error) {
	e := &Engine{
		historyLimit: DefaultHistoryLimit,
		output:       os.Stderr,
		logger:       logging.NullLogger,
	}
	for _, opt := range opts {
		opt(e)
	}

	if initial.IsNull() {
		initial = value.NewObject()
	}
	store, err := document.NewStore(initial)
	if err != nil {
		return nil, err
	}

	e.store = store
	e.history = history.New(history.WithLimit(e.historyLimit))
	e.notifier = notify.New(notify.WithLogger(e.logger.WithComponent("notify")))
	return e, nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Data returns a deep copy of the whole document.
func (e *Engine) Data() Value {
	return e.store.Snapshot()
}

// Get returns a copy of the value at path.
func (e *Engine) Get(path string) (Value, error) {
	return e.store.Get(path)
}

// Has reports whether a value exists at path.
func (e *Engine) Has(path string) bool {
	return e.store.Has(path)
}

// ============================================================================
// Write Operations
// ============================================================================

// Set writes v at path, creating missing intermediate objects. Writing the
// same value the key already holds does nothing.
func (e *Engine) Set(path string, v Value) error {
	if e.readOnly {
		return ErrReadOnly
	}
	ch, err := e.store.RawSet(path, v)
	if err != nil {
		return err
	}
	if ch == nil {
		return nil
	}
	e.commit(*ch)
	return nil
}

// Delete removes the value at path.
func (e *Engine) Delete(path string) error {
	if e.readOnly {
		return ErrReadOnly
	}
	ch, err := e.store.RawDelete(path)
	if err != nil {
		return err
	}
	e.commit(*ch)
	return nil
}

// commit records an applied change. Outside a batch the change is
// dispatched at once; inside one it waits for the batch to close.
func (e *Engine) commit(ch Change) {
	e.history.Record(history.NewCommand(ch))
	if e.history.Grouping() {
		e.logger.Debug("buffered %s", ch)
		return
	}
	e.logger.Debug("committed %s", ch)
	e.notifier.Dispatch(ch)
}

// ============================================================================
// Batches
// ============================================================================

// Batch runs fn as one undo unit. Changes made by fn are dispatched once,
// as a single batch change, when the outermost batch returns. Nested
// batches join the enclosing one.
//
// If fn returns an error or panics, the changes made since this call began
// are reverted without being recorded or dispatched. The error is returned;
// a panic is re-raised after the rollback.
func (e *Engine) Batch(fn func() error) (err error) {
	if fn == nil {
		return nil
	}

	mark := e.history.Begin()
	defer func() {
		if r := recover(); r != nil {
			if rbErr := e.history.Rollback(e.store, mark); rbErr != nil {
				e.logger.Error("batch rollback failed: %v", rbErr)
			}
			e.endBatch()
			panic(r)
		}
	}()

	if err = fn(); err != nil {
		if rbErr := e.history.Rollback(e.store, mark); rbErr != nil {
			e.logger.Error("batch rollback failed: %v", rbErr)
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}
	e.endBatch()
	return err
}

func (e *Engine) endBatch() {
	batch := e.history.End()
	if batch == nil {
		return
	}
	ch := batch.Change()
	e.logger.Debug("committed batch of %d changes", len(ch.Changes))
	e.notifier.Dispatch(ch)
}

// InBatch reports whether a batch is open.
func (e *Engine) InBatch() bool {
	return e.history.Grouping()
}

// ============================================================================
// Undo/Redo
// ============================================================================

// Undo reverts the most recent history entry. It does nothing when there
// is nothing to undo.
func (e *Engine) Undo() error {
	if err := e.checkReplay(); err != nil {
		return err
	}
	ch, err := e.history.Undo(e.store)
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	if ch != nil {
		e.logger.Debug("undo %s", ch)
		e.notifier.Dispatch(*ch)
	}
	return nil
}

// Redo reapplies the most recently undone entry. It does nothing when
// there is nothing to redo.
func (e *Engine) Redo() error {
	if err := e.checkReplay(); err != nil {
		return err
	}
	ch, err := e.history.Redo(e.store)
	if err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	if ch != nil {
		e.logger.Debug("redo %s", ch)
		e.notifier.Dispatch(*ch)
	}
	return nil
}

func (e *Engine) checkReplay() error {
	if e.readOnly {
		return ErrReadOnly
	}
	if e.history.Grouping() {
		return ErrBatchActive
	}
	return nil
}

// CanUndo returns true if there are operations to undo.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if there are operations to redo.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of undo entries.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of redo entries.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// UndoInfo describes the undo entries, oldest first.
func (e *Engine) UndoInfo() []EntryInfo {
	return e.history.UndoInfo()
}

// RedoInfo describes the redo entries, oldest first.
func (e *Engine) RedoInfo() []EntryInfo {
	return e.history.RedoInfo()
}

// ClearHistory clears all undo/redo history.
// It returns ErrBatchActive while a batch is open.
func (e *Engine) ClearHistory() error {
	if e.history.Grouping() {
		return ErrBatchActive
	}
	e.history.Clear()
	return nil
}

// ============================================================================
// Observers
// ============================================================================

// OnChange registers fn for changes at, above or below any of prefixes.
// With no prefixes fn receives every change.
func (e *Engine) OnChange(fn Observer, prefixes ...string) (*Subscription, error) {
	return e.notifier.Subscribe(fn, prefixes...)
}

// OffChange removes prefixes from sub. With no prefixes it removes the ""
// registration, the one OnChange makes by default. A subscription left
// without prefixes stops receiving changes.
func (e *Engine) OffChange(sub *Subscription, prefixes ...string) error {
	return e.notifier.Unsubscribe(sub, prefixes...)
}

// RemoveObserver removes sub from every prefix it is registered under.
func (e *Engine) RemoveObserver(sub *Subscription) error {
	return e.notifier.Remove(sub)
}

// Subscription returns the active subscription with the given ID.
func (e *Engine) Subscription(id string) (*Subscription, bool) {
	return e.notifier.Lookup(id)
}

// ObserverCount returns the number of active subscriptions.
func (e *Engine) ObserverCount() int {
	return e.notifier.Len()
}

// ============================================================================
// Debug Output
// ============================================================================

// Log writes a debug dump of the document to the engine output.
// The format is not stable.
func (e *Engine) Log() error {
	return e.store.Dump(e.output, e.color)
}

// Dump writes an uncolored debug dump of the document to w.
func (e *Engine) Dump(w io.Writer) error {
	return e.store.Dump(w, false)
}

// IsReadOnly returns true if the engine is read-only.
func (e *Engine) IsReadOnly() bool {
	return e.readOnly
}
