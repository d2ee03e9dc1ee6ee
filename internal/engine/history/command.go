package history

import (
	"errors"
	"fmt"

	"github.com/dshills/jsondoc/internal/engine/document"
	"github.com/dshills/jsondoc/internal/engine/value"
)

// Target is the raw mutation surface commands are replayed against.
// Replay through a Target never records history.
type Target interface {
	RawSet(path string, v value.Value) (*document.Change, error)
	RawDelete(path string) (*document.Change, error)
	Restore(path string, v value.Value) (*document.Change, error)
}

// CommandKind identifies the variant of a Command.
type CommandKind uint8

const (
	// SetCommand wraps an add or update change.
	SetCommand CommandKind = iota
	// DeleteCommand wraps a delete change.
	DeleteCommand
	// BatchCommand groups leaf commands as one undo unit.
	BatchCommand
)

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case SetCommand:
		return "set"
	case DeleteCommand:
		return "delete"
	case BatchCommand:
		return "batch"
	default:
		return "unknown"
	}
}

// Command is a reversible document edit.
//
// A leaf command carries the change it produced. Apply replays the change
// forward; Revert restores the old value, or removes the key if it did not
// exist. A batch command holds leaf commands, applied in order and
// reverted in reverse order.
type Command struct {
	kind     CommandKind
	change   document.Change
	children []*Command
}

// NewCommand wraps a leaf change in the matching command.
func NewCommand(change document.Change) *Command {
	kind := SetCommand
	if change.Kind == document.ChangeDelete {
		kind = DeleteCommand
	}
	return &Command{kind: kind, change: change}
}

// NewBatchCommand groups commands into one undo unit.
func NewBatchCommand(children []*Command) *Command {
	return &Command{kind: BatchCommand, children: children}
}

// Kind returns the command variant.
func (c *Command) Kind() CommandKind {
	return c.kind
}

// Children returns the grouped commands of a batch.
func (c *Command) Children() []*Command {
	return c.children
}

// Change returns the change the command records: the leaf change, or a
// batch change listing the leaf changes in commit order.
func (c *Command) Change() document.Change {
	if c.kind != BatchCommand {
		return c.change
	}
	leaves := make([]document.Change, 0, len(c.children))
	for _, child := range c.children {
		leaves = append(leaves, child.Change().Leaves()...)
	}
	return document.NewBatchChange(leaves)
}

// Description returns a human-readable description.
func (c *Command) Description() string {
	switch c.kind {
	case SetCommand:
		return fmt.Sprintf("Set %s", c.change.Path)
	case DeleteCommand:
		return fmt.Sprintf("Delete %s", c.change.Path)
	default:
		if len(c.children) == 1 {
			return c.children[0].Description()
		}
		return fmt.Sprintf("Batch of %d edits", len(c.children))
	}
}

// Apply replays the command forward and returns the changes it made.
// If a batch step fails, the steps already applied are reverted. Errors
// from that rollback are joined to the returned error.
func (c *Command) Apply(t Target) ([]document.Change, error) {
	if c.kind != BatchCommand {
		ch, err := c.applyLeaf(t)
		return appendChange(nil, ch), err
	}

	var changes []document.Change
	for i, child := range c.children {
		ch, err := child.Apply(t)
		if err != nil {
			errs := []error{fmt.Errorf("redo batch step %d: %w", i, err)}
			for j := i - 1; j >= 0; j-- {
				if _, rerr := c.children[j].Revert(t); rerr != nil {
					errs = append(errs, fmt.Errorf("rollback batch step %d: %w", j, rerr))
				}
			}
			return nil, errors.Join(errs...)
		}
		changes = append(changes, ch...)
	}
	return changes, nil
}

// Revert undoes the command and returns the changes it made.
// If a batch step fails, the steps already reverted are applied again.
// Errors from that reapply are joined to the returned error.
func (c *Command) Revert(t Target) ([]document.Change, error) {
	if c.kind != BatchCommand {
		ch, err := c.revertLeaf(t)
		return appendChange(nil, ch), err
	}

	var changes []document.Change
	for i := len(c.children) - 1; i >= 0; i-- {
		ch, err := c.children[i].Revert(t)
		if err != nil {
			errs := []error{fmt.Errorf("undo batch step %d: %w", i, err)}
			for j := i + 1; j < len(c.children); j++ {
				if _, aerr := c.children[j].Apply(t); aerr != nil {
					errs = append(errs, fmt.Errorf("rollback batch step %d: %w", j, aerr))
				}
			}
			return nil, errors.Join(errs...)
		}
		changes = append(changes, ch...)
	}
	return changes, nil
}

func (c *Command) applyLeaf(t Target) (*document.Change, error) {
	if c.kind == DeleteCommand {
		return t.RawDelete(c.change.Path)
	}
	return t.RawSet(c.change.Path, c.change.NewValue)
}

func (c *Command) revertLeaf(t Target) (*document.Change, error) {
	switch c.change.Kind {
	case document.ChangeAdd:
		return t.RawDelete(c.change.Path)
	case document.ChangeUpdate:
		return t.RawSet(c.change.Path, c.change.OldValue)
	default:
		return t.Restore(c.change.Path, c.change.OldValue)
	}
}

func appendChange(changes []document.Change, ch *document.Change) []document.Change {
	if ch == nil {
		return changes
	}
	return append(changes, *ch)
}
