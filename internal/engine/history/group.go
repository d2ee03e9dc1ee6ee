package history

// Begin opens a group, or deepens the current one. Nested groups are
// flattened into the outermost one. The returned mark identifies the
// buffered commands recorded from this point on, for Rollback.
func (h *History) Begin() int {
	h.depth++
	return len(h.pending)
}

// End closes one level of grouping. Closing the outermost level commits
// the buffered commands as a single batch command, clears the redo stack
// and returns the batch. It returns nil if the group is still open, if
// nothing was buffered, or if no group was open.
func (h *History) End() *Command {
	if h.depth == 0 {
		return nil
	}
	h.depth--
	if h.depth > 0 || len(h.pending) == 0 {
		if h.depth == 0 {
			h.pending = nil
		}
		return nil
	}

	batch := NewBatchCommand(h.pending)
	h.pending = nil
	h.push(batch)
	return batch
}

// Rollback reverts the commands buffered since mark, most recent first,
// and drops them from the group. Nothing is recorded. If a revert fails
// the remaining commands stay buffered.
func (h *History) Rollback(t Target, mark int) error {
	if mark < 0 {
		mark = 0
	}
	for len(h.pending) > mark {
		last := h.pending[len(h.pending)-1]
		if _, err := last.Revert(t); err != nil {
			return err
		}
		h.pending = h.pending[:len(h.pending)-1]
	}
	return nil
}

// Grouping reports whether a group is open.
func (h *History) Grouping() bool {
	return h.depth > 0
}

// Depth returns the current group nesting depth.
func (h *History) Depth() int {
	return h.depth
}

// Pending returns the number of commands buffered in the open group.
func (h *History) Pending() int {
	return len(h.pending)
}
