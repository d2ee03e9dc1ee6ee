package history

import "time"

// EntryInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type EntryInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was recorded
	Edits       int       // Number of leaf edits in the entry
	Paths       []string  // Paths touched, in commit order
}

func newEntryInfo(e *undoEntry) EntryInfo {
	leaves := e.command.Change().Leaves()
	paths := make([]string, len(leaves))
	for i, leaf := range leaves {
		paths[i] = leaf.Path
	}
	return EntryInfo{
		Description: e.command.Description(),
		Timestamp:   e.timestamp,
		Edits:       len(leaves),
		Paths:       paths,
	}
}

func entryInfos(entries []*undoEntry) []EntryInfo {
	result := make([]EntryInfo, len(entries))
	for i, e := range entries {
		result[i] = newEntryInfo(e)
	}
	return result
}
