package document

import (
	"fmt"
	"strings"

	"github.com/dshills/jsondoc/internal/engine/value"
)

// ChangeKind categorizes a change.
type ChangeKind uint8

const (
	// ChangeAdd indicates a key that did not exist was written.
	ChangeAdd ChangeKind = iota
	// ChangeUpdate indicates an existing key received a different value.
	ChangeUpdate
	// ChangeDelete indicates an existing key was removed.
	ChangeDelete
	// ChangeBatch bundles an ordered list of leaf changes.
	ChangeBatch
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeUpdate:
		return "update"
	case ChangeDelete:
		return "delete"
	case ChangeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Change describes one mutation of the document.
type Change struct {
	// Kind is the type of change.
	Kind ChangeKind

	// Path is the dotted path of the changed key. Empty for batches.
	Path string

	// OldValue is the previous value. Null for adds.
	OldValue value.Value

	// NewValue is the written value. Null for deletes.
	NewValue value.Value

	// Changes holds the leaf changes of a batch, in commit order.
	Changes []Change
}

// NewBatchChange bundles leaf changes into a single batch change.
func NewBatchChange(changes []Change) Change {
	return Change{Kind: ChangeBatch, Changes: changes}
}

// HasOld reports whether the change carries a previous value.
func (c Change) HasOld() bool {
	return c.Kind == ChangeUpdate || c.Kind == ChangeDelete
}

// HasNew reports whether the change carries a written value.
func (c Change) HasNew() bool {
	return c.Kind == ChangeAdd || c.Kind == ChangeUpdate
}

// Leaves returns the leaf changes: the bundled list for a batch,
// or the change itself.
func (c Change) Leaves() []Change {
	if c.Kind == ChangeBatch {
		return c.Changes
	}
	return []Change{c}
}

// Clone returns a deep copy of the change and its values.
func (c Change) Clone() Change {
	out := Change{
		Kind:     c.Kind,
		Path:     c.Path,
		OldValue: c.OldValue.Clone(),
		NewValue: c.NewValue.Clone(),
	}
	if c.Changes != nil {
		out.Changes = make([]Change, len(c.Changes))
		for i, leaf := range c.Changes {
			out.Changes[i] = leaf.Clone()
		}
	}
	return out
}

// Invert returns the change that undoes c. A batch inverts to the
// reversed list of inverted leaves.
func (c Change) Invert() Change {
	switch c.Kind {
	case ChangeAdd:
		return Change{Kind: ChangeDelete, Path: c.Path, OldValue: c.NewValue}
	case ChangeUpdate:
		return Change{Kind: ChangeUpdate, Path: c.Path, OldValue: c.NewValue, NewValue: c.OldValue}
	case ChangeDelete:
		return Change{Kind: ChangeAdd, Path: c.Path, NewValue: c.OldValue}
	case ChangeBatch:
		inv := make([]Change, len(c.Changes))
		for i, leaf := range c.Changes {
			inv[len(c.Changes)-1-i] = leaf.Invert()
		}
		return NewBatchChange(inv)
	default:
		return c
	}
}

// String returns a short human-readable description.
func (c Change) String() string {
	switch c.Kind {
	case ChangeAdd:
		return fmt.Sprintf("add %s = %s", c.Path, c.NewValue)
	case ChangeUpdate:
		return fmt.Sprintf("update %s: %s -> %s", c.Path, c.OldValue, c.NewValue)
	case ChangeDelete:
		return fmt.Sprintf("delete %s (was %s)", c.Path, c.OldValue)
	case ChangeBatch:
		parts := make([]string, len(c.Changes))
		for i, leaf := range c.Changes {
			parts[i] = leaf.String()
		}
		return "batch [" + strings.Join(parts, "; ") + "]"
	default:
		return "unknown change"
	}
}
