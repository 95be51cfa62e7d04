// Package shell dispatches submitted lines through alias expansion, builtins
// and external execution, and owns the session state they share.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strings"
	"sync"
	"sync/atomic"

	"advterm/internal/alias"
	"advterm/internal/config"
	"advterm/internal/history"
	"advterm/internal/runner"
	"advterm/internal/store"
)

// State is the dispatcher's position in processing a submitted line.
type State int32

const (
	StateIdle State = iota
	StateResolving
	StateBuiltin
	StateExecuting
	StateCompleting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolving:
		return "Resolving"
	case StateBuiltin:
		return "Builtin"
	case StateExecuting:
		return "Executing"
	case StateCompleting:
		return "Completing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Segment is a run of output text, styled as an error or not.
type Segment struct {
	Text    string
	IsError bool
}

// Reply is what the caller shows after a submitted line completes.
type Reply struct {
	// Command is the line as submitted, before alias expansion.
	Command  string
	Output   string
	IsError  bool
	Segments []Segment
	// NewDirectory is set when the line moved the session to another directory.
	NewDirectory string
	// Clear asks the front-end to wipe its output buffer.
	Clear bool
	// Exit asks the front-end to end the session.
	Exit bool
}

type output struct {
	segments []Segment
	failed   bool
	clear    bool
	exit     bool
}

func (o *output) printf(format string, args ...interface{}) {
	o.segments = append(o.segments, Segment{Text: fmt.Sprintf(format, args...)})
}

func (o *output) errorf(format string, args ...interface{}) {
	o.failed = true
	o.segments = append(o.segments, Segment{Text: fmt.Sprintf(format, args...), IsError: true})
}

// Options configures a Dispatcher.
type Options struct {
	Store  *store.Persistent
	Runner runner.ProcessRunner
	Logger *slog.Logger
	// Home defaults to the current user's home directory.
	Home string
}

// Dispatcher processes one submitted line at a time against a single Session.
type Dispatcher struct {
	mu    sync.Mutex
	state atomic.Int32

	session   *Session
	history   *history.History
	aliases   *alias.Table
	bookmarks *Bookmarks
	settings  *config.Settings
	store     *store.Persistent
	executor  *Executor
	builtins  map[string]Builtin
	logger    *slog.Logger

	home     string
	username string
	hostname string
	dirty    bool
}

// New loads history, aliases and settings from the store and starts a session.
// Load failures are logged and replaced by defaults.
func New(ctx context.Context, opts Options) (*Dispatcher, error) {
	if opts.Runner == nil {
		return nil, errors.New("shell: a process runner is required")
	}
	d := &Dispatcher{
		store:     opts.Store,
		logger:    opts.Logger,
		home:      opts.Home,
		bookmarks: newBookmarks(),
	}
	if d.store == nil {
		d.store = store.NewPersistent(store.NewMemory())
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
		}
		d.home = home
	}
	d.username, d.hostname = identity()
	d.executor = NewExecutor(opts.Runner, d.home)
	d.registerBuiltins()

	settings, err := d.store.LoadSettings(ctx)
	if err != nil {
		d.logger.Warn("failed to load settings, using defaults", "error", err)
	}
	d.settings = settings

	entries, err := d.store.LoadHistory(ctx)
	if err != nil {
		d.logger.Warn("failed to load command history", "error", err)
		entries = nil
	}
	d.history = history.New(settings.HistoryLimit(), entries)
	d.logger.Debug("loaded command history", "commands", d.history.Len())

	aliases, found, err := d.store.LoadAliases(ctx)
	switch {
	case err != nil:
		d.logger.Warn("failed to load aliases, using defaults", "error", err)
		aliases = alias.Defaults(d.home)
	case !found:
		aliases = alias.Defaults(d.home)
	}
	d.aliases = aliases
	d.logger.Debug("loaded aliases", "aliases", d.aliases.Len())

	d.session = &Session{
		Dir:        d.startDir(settings.DefaultDirectory),
		HistoryPos: d.history.Len(),
	}
	return d, nil
}

func (d *Dispatcher) startDir(preferred string) string {
	for _, candidate := range []string{preferred, d.home} {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return string(os.PathSeparator)
}

func identity() (string, string) {
	username := "user"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return username, hostname
}

func (d *Dispatcher) setState(s State) {
	d.state.Store(int32(s))
}

// State returns the current processing state. It is safe to call while a line is running.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Submit runs one line to completion. Concurrent calls are serialized.
func (d *Dispatcher) Submit(ctx context.Context, line string) Reply {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submit(ctx, line)
}

func (d *Dispatcher) submit(ctx context.Context, line string) Reply {
	original := strings.TrimSpace(line)
	if original == "" {
		return Reply{Output: "\n", Segments: []Segment{{Text: "\n"}}}
	}
	defer d.setState(StateIdle)
	startDir := d.session.Dir
	out := &output{}

	d.setState(StateResolving)
	command := original
	if resolved, ok := d.aliases.Resolve(original); ok {
		command = resolved
		out.printf("> %s\n", command)
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		d.record(original)
		return d.complete(ctx, original, startDir, out)
	}
	if builtin, ok := d.builtins[strings.ToLower(fields[0])]; ok {
		d.setState(StateBuiltin)
		if status := builtin(ctx, d, fields[1:], out); status != NotBuiltin {
			d.logger.Debug("builtin handled", "command", command, "error", status == HandledError)
			d.record(original)
			return d.complete(ctx, original, startDir, out)
		}
	}

	d.setState(StateExecuting)
	result := d.executor.Execute(ctx, d.session, command)
	if result.Success {
		if strings.TrimSpace(result.Output) != "" {
			out.printf("%s", result.Output)
			if !strings.HasSuffix(result.Output, "\n") {
				out.printf("\n")
			}
		}
		if result.DirChange {
			out.printf("Directory changed to: %s\n", d.session.Dir)
		}
	} else {
		if strings.TrimSpace(result.Output) != "" {
			out.printf("%s", result.Output)
		}
		out.errorf("%s", result.Err.Message)
		if !strings.HasSuffix(result.Err.Message, "\n") {
			out.errorf("\n")
		}
		d.logger.Debug("command failed", "command", command, "kind", result.Err.Kind.String())
	}
	d.record(original)
	return d.complete(ctx, original, startDir, out)
}

func (d *Dispatcher) record(command string) {
	if d.history.Append(command) {
		d.dirty = true
	}
	d.session.HistoryPos = d.history.Len()
}

func (d *Dispatcher) complete(ctx context.Context, command, startDir string, out *output) Reply {
	d.setState(StateCompleting)
	if d.dirty && d.settings.HistoryEnabled() {
		d.saveHistory(ctx)
	}
	reply := Reply{
		Command:  command,
		IsError:  out.failed,
		Segments: out.segments,
		Clear:    out.clear,
		Exit:     out.exit,
	}
	var text strings.Builder
	for _, s := range out.segments {
		text.WriteString(s.Text)
	}
	reply.Output = text.String()
	if d.session.Dir != startDir {
		reply.NewDirectory = d.session.Dir
	}
	return reply
}

func (d *Dispatcher) saveHistory(ctx context.Context) {
	if err := d.store.SaveHistory(ctx, d.history.Entries()); err != nil {
		d.logger.Error("failed to save command history", "kind", KindStoreIOFailure.String(), "error", err)
		return
	}
	d.dirty = false
	d.logger.Debug("saved command history", "commands", d.history.Len())
}

func (d *Dispatcher) saveAliases(ctx context.Context) {
	if err := d.store.SaveAliases(ctx, d.aliases); err != nil {
		d.logger.Error("failed to save aliases", "kind", KindStoreIOFailure.String(), "error", err)
		return
	}
	d.logger.Debug("saved aliases", "aliases", d.aliases.Len())
}

func (d *Dispatcher) addAlias(ctx context.Context, name, value string) *Error {
	if name == "" || strings.ContainsAny(name, " \t") {
		return newError(KindAliasSyntax, "Usage: alias add name=command")
	}
	d.aliases.Set(name, value)
	d.saveAliases(ctx)
	return nil
}

func (d *Dispatcher) removeAlias(ctx context.Context, name string) *Error {
	if !d.aliases.Remove(name) {
		return newError(KindNotFound, "Alias '%s' not found", name)
	}
	d.saveAliases(ctx)
	return nil
}

// gotoBookmark does not check that the directory still exists.
func (d *Dispatcher) gotoBookmark(name string) *Error {
	path, ok := d.bookmarks.get(name)
	if !ok {
		return newError(KindNotFound, "Bookmark '%s' not found", name)
	}
	d.session.Dir = path
	return nil
}

func (d *Dispatcher) clearHistory(ctx context.Context) {
	d.history.Clear()
	d.session.HistoryPos = 0
	d.saveHistory(ctx)
}

// StartSearch enters reverse-incremental search over the history.
func (d *Dispatcher) StartSearch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session.Search = history.NewSearch(d.history)
	d.session.Search.Start()
}

// AppendSearchChar extends the search term.
func (d *Dispatcher) AppendSearchChar(r rune) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.Search != nil {
		d.session.Search.Append(r)
	}
}

// BackspaceSearch drops the last rune of the search term.
func (d *Dispatcher) BackspaceSearch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.Search != nil {
		d.session.Search.Backspace()
	}
}

// CancelSearch leaves search mode without touching the input line.
func (d *Dispatcher) CancelSearch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.Search != nil {
		d.session.Search.Cancel()
		d.session.Search = nil
	}
}

// SearchState describes an in-progress search for display.
type SearchState struct {
	Active  bool
	Buffer  string
	Matches []string
	Preview string
}

// Search returns the current search state.
func (d *Dispatcher) Search() SearchState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.session.Search
	if s == nil || !s.Active() {
		return SearchState{}
	}
	preview, _ := s.Preview()
	return SearchState{Active: true, Buffer: s.Buffer(), Matches: s.Matches(), Preview: preview}
}

// AcceptSearch leaves search mode and submits the selected match.
// It reports false, submitting nothing, when there was no match.
func (d *Dispatcher) AcceptSearch(ctx context.Context) (Reply, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.session.Search
	if s == nil {
		return Reply{}, false
	}
	d.session.Search = nil
	command, ok := s.Accept()
	if !ok {
		return Reply{}, false
	}
	return d.submit(ctx, command), true
}

// HistoryUp moves one entry back in history, like the up arrow.
func (d *Dispatcher) HistoryUp() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.HistoryPos > 0 {
		d.session.HistoryPos--
		return d.history.At(d.session.HistoryPos), true
	}
	return "", false
}

// HistoryDown moves one entry forward; past the newest entry it yields an empty line.
func (d *Dispatcher) HistoryDown() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.HistoryPos < d.history.Len()-1 {
		d.session.HistoryPos++
		return d.history.At(d.session.HistoryPos), true
	}
	d.session.HistoryPos = d.history.Len()
	return "", true
}

// History returns the history, oldest first.
func (d *Dispatcher) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.Entries()
}

// Aliases returns the alias table in insertion order.
func (d *Dispatcher) Aliases() []alias.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.aliases.Entries()
}

// AddAlias registers or overwrites an alias and persists the table.
func (d *Dispatcher) AddAlias(ctx context.Context, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.addAlias(ctx, strings.TrimSpace(name), value); err != nil {
		return err
	}
	return nil
}

// RemoveAlias deletes an alias; it returns an ErrNotFound-kind error if absent.
func (d *Dispatcher) RemoveAlias(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.removeAlias(ctx, name); err != nil {
		return err
	}
	return nil
}

// Bookmarks returns the session's bookmarks in creation order.
func (d *Dispatcher) Bookmarks() []Bookmark {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bookmarks.list()
}

// AddBookmark records the current directory under name.
func (d *Dispatcher) AddBookmark(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bookmarks.set(name, d.session.Dir)
}

// GotoBookmark moves the session to a bookmarked directory.
func (d *Dispatcher) GotoBookmark(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.gotoBookmark(name); err != nil {
		return err
	}
	return nil
}

// Dir returns the session's current directory.
func (d *Dispatcher) Dir() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Dir
}

// Prompt renders user@host:dir$ for the current directory.
func (d *Dispatcher) Prompt() string {
	return fmt.Sprintf("%s@%s:%s$ ", d.username, d.hostname, d.Dir())
}

// Settings returns the settings loaded at start.
func (d *Dispatcher) Settings() *config.Settings {
	return d.settings
}

// Close flushes the history when saving is enabled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.settings.HistoryEnabled() {
		return nil
	}
	if err := d.store.SaveHistory(ctx, d.history.Entries()); err != nil {
		return fmt.Errorf("failed to flush history: %w", err)
	}
	return nil
}
