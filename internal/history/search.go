package history

// Search is the reverse-incremental search state machine.
// It is Inactive until Start, and every terminal signal (Cancel, Accept) returns it there.
type Search struct {
	history *History
	active  bool
	buffer  []rune
	matches []string
	index   int
}

// NewSearch returns an inactive search over h.
func NewSearch(h *History) *Search {
	return &Search{history: h}
}

// Start enters the Active state with an empty buffer, matching the whole history.
func (s *Search) Start() {
	s.active = true
	s.buffer = s.buffer[:0]
	s.recompute()
}

// Active reports whether a search is in progress.
func (s *Search) Active() bool {
	return s.active
}

// Append adds r to the search term.
func (s *Search) Append(r rune) {
	if !s.active {
		return
	}
	s.buffer = append(s.buffer, r)
	s.recompute()
}

// Backspace removes the last rune of the search term.
func (s *Search) Backspace() {
	if !s.active {
		return
	}
	if n := len(s.buffer); n > 0 {
		s.buffer = s.buffer[:n-1]
	}
	s.recompute()
}

// Cancel leaves the search, discarding the term and matches.
func (s *Search) Cancel() {
	s.reset()
}

// Accept leaves the search and returns the selected match, if any.
func (s *Search) Accept() (string, bool) {
	if !s.active {
		return "", false
	}
	var (
		command string
		ok      bool
	)
	if len(s.matches) > 0 {
		command, ok = s.matches[s.index], true
	}
	s.reset()
	return command, ok
}

// Buffer returns the current search term.
func (s *Search) Buffer() string {
	return string(s.buffer)
}

// Matches returns the current matches, most recent first.
func (s *Search) Matches() []string {
	return append([]string(nil), s.matches...)
}

// Preview returns the match that Accept would submit.
func (s *Search) Preview() (string, bool) {
	if !s.active || len(s.matches) == 0 {
		return "", false
	}
	return s.matches[s.index], true
}

func (s *Search) recompute() {
	s.matches = s.history.Filter(string(s.buffer))
	s.index = 0
}

func (s *Search) reset() {
	s.active = false
	s.buffer = nil
	s.matches = nil
	s.index = 0
}
