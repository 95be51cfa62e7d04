package shell

import "advterm/internal/history"

// Session is the mutable state of one running shell.
type Session struct {
	// Dir is absolute and was an existing directory when it was set.
	Dir string
	// HistoryPos indexes the history for arrow-key navigation, in [0, len].
	HistoryPos int
	// Search is non-nil only while a reverse search is active.
	Search *history.Search
}

// Bookmark is a named directory.
type Bookmark struct {
	Name string
	Path string
}

// Bookmarks maps names to directories for the lifetime of the process.
type Bookmarks struct {
	order []string
	paths map[string]string
}

func newBookmarks() *Bookmarks {
	return &Bookmarks{paths: make(map[string]string)}
}

func (b *Bookmarks) set(name, path string) {
	if _, ok := b.paths[name]; !ok {
		b.order = append(b.order, name)
	}
	b.paths[name] = path
}

func (b *Bookmarks) get(name string) (string, bool) {
	path, ok := b.paths[name]
	return path, ok
}

func (b *Bookmarks) list() []Bookmark {
	result := make([]Bookmark, 0, len(b.order))
	for _, name := range b.order {
		result = append(result, Bookmark{Name: name, Path: b.paths[name]})
	}
	return result
}
