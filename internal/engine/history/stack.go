package history

import (
	"time"

	"github.com/dshills/jsondoc/internal/engine/document"
)

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   *Command
	timestamp time.Time
}

// History manages the undo and redo stacks of a document.
//
// History is not safe for concurrent use. Replay through Undo and Redo is
// history-neutral: the changes it makes are never recorded.
type History struct {
	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	depth   int
	pending []*Command

	// Configuration
	limit int
}

// Option configures a History.
type Option func(*History)

// WithLimit caps the number of undo entries. The oldest entries are
// evicted first. Zero or less means unlimited.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// New creates a new history manager.
func New(opts ...Option) *History {
	h := &History{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record adds an already applied command.
// Inside a group the command is buffered; otherwise the redo stack is
// cleared and the command pushed onto the undo stack.
func (h *History) Record(cmd *Command) {
	if h.depth > 0 {
		h.pending = append(h.pending, cmd)
		return
	}
	h.push(cmd)
}

func (h *History) push(cmd *Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})

	h.redoStack = nil

	if h.limit > 0 && len(h.undoStack) > h.limit {
		excess := len(h.undoStack) - h.limit
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the most recent command and moves it to the redo stack.
// It returns the resulting change (a batch change for a batch command), or
// nil when there is nothing to undo or the replay changed nothing.
func (h *History) Undo(t Target) (*document.Change, error) {
	if len(h.undoStack) == 0 {
		return nil, nil
	}

	entry := h.undoStack[len(h.undoStack)-1]
	changes, err := entry.command.Revert(t)
	if err != nil {
		return nil, err
	}

	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry)
	return replayResult(entry.command, changes), nil
}

// Redo reapplies the most recently undone command and moves it back to
// the undo stack. The redo stack is left otherwise untouched.
func (h *History) Redo(t Target) (*document.Change, error) {
	if len(h.redoStack) == 0 {
		return nil, nil
	}

	entry := h.redoStack[len(h.redoStack)-1]
	changes, err := entry.command.Apply(t)
	if err != nil {
		return nil, err
	}

	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, entry)
	return replayResult(entry.command, changes), nil
}

func replayResult(cmd *Command, changes []document.Change) *document.Change {
	if cmd.Kind() == BatchCommand {
		if len(changes) == 0 {
			return nil
		}
		batch := document.NewBatchChange(changes)
		return &batch
	}
	if len(changes) == 0 {
		return nil
	}
	return &changes[0]
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	return len(h.redoStack)
}

// Clear removes all undo/redo history and any open group.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
	h.depth = 0
	h.pending = nil
}

// UndoInfo returns info about the undo entries, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	return entryInfos(h.undoStack)
}

// RedoInfo returns info about the redo entries, oldest first.
func (h *History) RedoInfo() []EntryInfo {
	return entryInfos(h.redoStack)
}

// PeekUndo returns info about the next undo entry without removing it.
func (h *History) PeekUndo() (EntryInfo, bool) {
	if len(h.undoStack) == 0 {
		return EntryInfo{}, false
	}
	return newEntryInfo(h.undoStack[len(h.undoStack)-1]), true
}

// PeekRedo returns info about the next redo entry without removing it.
func (h *History) PeekRedo() (EntryInfo, bool) {
	if len(h.redoStack) == 0 {
		return EntryInfo{}, false
	}
	return newEntryInfo(h.redoStack[len(h.redoStack)-1]), true
}

// SetLimit changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	h.limit = n
	if n > 0 && len(h.undoStack) > n {
		h.undoStack = h.undoStack[len(h.undoStack)-n:]
	}
}

// Limit returns the maximum number of undo entries, zero if unlimited.
func (h *History) Limit() int {
	return h.limit
}
