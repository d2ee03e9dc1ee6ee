// Package history provides undo/redo for document edits.
//
// The history system uses the Command pattern. Every applied mutation is
// wrapped in a Command that can be replayed forward (Apply) or backward
// (Revert) against a Target, normally a document.Store.
//
// # Commands
//
// Commands form a small closed set:
//   - SetCommand: an add or update; reverting removes the key or restores
//     the old value
//   - DeleteCommand: a removal; reverting puts the old value back
//   - BatchCommand: leaf commands applied in order and reverted in
//     reverse order, as a single undo unit
//
// # History Stack
//
// The History type manages undo/redo stacks and command grouping:
//
//	h := history.New(history.WithLimit(500))
//
//	// Record a change that was already applied
//	h.Record(history.NewCommand(*change))
//
//	// Undo/redo
//	h.Undo(store)
//	h.Redo(store)
//
// Recording a new command clears the redo stack. Undo and Redo replay
// through the Target without recording anything.
//
// # Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	mark := h.Begin()
//	// ... record edits ...
//	if failed {
//	    h.Rollback(store, mark)
//	}
//	batch := h.End()
//
// Nested Begin calls flatten into the outermost group.
package history
