package core

import (
	"cmp"
	"slices"
)

// MaxTranscript is how many rows the in-memory transcript keeps.
const MaxTranscript = 200

// Dedup sorts messages by T (stable) and folds them by (T, PlayerID, Text).
// A later occurrence replaces an earlier one in place, so the result keeps
// first-seen order and stays sorted by T. Merging is idempotent regardless
// of arrival order.
func Dedup(list []ChatMessage) []ChatMessage {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b ChatMessage) int {
		return cmp.Compare(a.T, b.T)
	})

	index := make(map[dedupKey]int, len(sorted))
	out := make([]ChatMessage, 0, len(sorted))
	for _, m := range sorted {
		k := m.key()
		if i, ok := index[k]; ok {
			out[i] = m
			continue
		}
		index[k] = len(out)
		out = append(out, m)
	}
	return out
}

// Transcript is the deduplicated, capped chat history of the current room.
type Transcript struct {
	limit int
	msgs  []ChatMessage
}

// NewTranscript creates an empty transcript keeping at most limit rows.
func NewTranscript(limit int) *Transcript {
	if limit <= 0 {
		limit = MaxTranscript
	}
	return &Transcript{limit: limit}
}

// Merge folds msgs into the transcript and returns the rows that were not
// present before (after capping).
func (t *Transcript) Merge(msgs ...ChatMessage) []ChatMessage {
	if len(msgs) == 0 {
		return nil
	}

	seen := make(map[dedupKey]struct{}, len(t.msgs))
	for _, m := range t.msgs {
		seen[m.key()] = struct{}{}
	}

	merged := Dedup(append(slices.Clone(t.msgs), msgs...))
	if len(merged) > t.limit {
		merged = merged[len(merged)-t.limit:]
	}
	t.msgs = merged

	var added []ChatMessage
	for _, m := range merged {
		if _, ok := seen[m.key()]; !ok {
			added = append(added, m)
		}
	}
	return added
}

// Messages returns a copy of the rows, oldest first.
func (t *Transcript) Messages() []ChatMessage {
	return slices.Clone(t.msgs)
}

// Len returns the number of rows.
func (t *Transcript) Len() int {
	return len(t.msgs)
}

// Reset drops every row.
func (t *Transcript) Reset() {
	t.msgs = nil
}
