// Package history keeps the bounded command history and the reverse-incremental search over it.
package history

import "strings"

// History is an ordered list of submitted commands, oldest first.
type History struct {
	entries []string
	limit   int
}

// New returns a history bounded to limit entries, seeded with entries.
// When entries exceeds the limit only the most recent ones are kept.
func New(limit int, entries []string) *History {
	h := &History{limit: limit}
	h.entries = append(h.entries, entries...)
	h.trim()
	return h
}

// Append adds command unless it is blank or repeats the last entry.
func (h *History) Append(command string) bool {
	if strings.TrimSpace(command) == "" {
		return false
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == command {
		return false
	}
	h.entries = append(h.entries, command)
	h.trim()
	return true
}

func (h *History) trim() {
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]string(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}

// SetLimit changes the bound, dropping the oldest entries if needed.
func (h *History) SetLimit(limit int) {
	h.limit = limit
	h.trim()
}

// Limit returns the bound.
func (h *History) Limit() int {
	return h.limit
}

// Clear empties the history.
func (h *History) Clear() {
	h.entries = nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// At returns the i-th entry, oldest first.
func (h *History) At(i int) string {
	return h.entries[i]
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []string {
	return append([]string{}, h.entries...)
}

// Filter returns the entries containing term (ignoring case), most recent first.
func (h *History) Filter(term string) []string {
	term = strings.ToLower(term)
	var result []string
	for i := len(h.entries) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(h.entries[i]), term) {
			result = append(result, h.entries[i])
		}
	}
	return result
}
