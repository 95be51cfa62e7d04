package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"advterm/internal/shell"
)

// commandCompleter completes the first word of a line from builtins,
// aliases and executables on PATH.
type commandCompleter struct {
	d *shell.Dispatcher

	once     sync.Once
	pathCmds []string
	lookPath func() []string
}

func newCompleter(d *shell.Dispatcher) *commandCompleter {
	return &commandCompleter{d: d, lookPath: executablesOnPath}
}

// Do implements readline.AutoCompleter.
func (c *commandCompleter) Do(line []rune, pos int) ([][]rune, int) {
	prefix := string(line[:pos])
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}
	return readline.NewPrefixCompleter(c.items()...).Do(line, pos)
}

// Complete returns the text to append to prefix, the common part of every
// candidate, plus the full candidate names.
func (c *commandCompleter) Complete(prefix string) (string, []string) {
	suffixes, _ := c.Do([]rune(prefix), len([]rune(prefix)))
	if len(suffixes) == 0 {
		return "", nil
	}
	names := make([]string, len(suffixes))
	common := suffixes[0]
	for i, s := range suffixes {
		names[i] = strings.TrimSpace(prefix + string(s))
		common = commonPrefix(common, s)
	}
	return string(common), names
}

func commonPrefix(a, b []rune) []rune {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}

func (c *commandCompleter) items() []readline.PrefixCompleterInterface {
	c.once.Do(func() { c.pathCmds = c.lookPath() })

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range c.d.BuiltinNames() {
		add(name)
	}
	for _, e := range c.d.Aliases() {
		add(e.Name)
	}
	for _, name := range c.pathCmds {
		add(name)
	}
	sort.Strings(names)

	items := make([]readline.PrefixCompleterInterface, len(names))
	for i, name := range names {
		items[i] = readline.PcItem(name)
	}
	return items
}

func executablesOnPath() []string {
	var names []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			names = append(names, entry.Name())
		}
	}
	return names
}
