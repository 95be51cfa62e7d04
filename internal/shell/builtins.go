package shell

import (
	"context"
	"sort"
	"strings"
)

// Status is the tri-state outcome of a builtin.
type Status int

const (
	// NotBuiltin defers the line to the Executor.
	NotBuiltin Status = iota
	Handled
	HandledError
)

// Builtin runs against the dispatcher's state. The dispatcher lock is held.
type Builtin func(ctx context.Context, d *Dispatcher, args []string, out *output) Status

func (d *Dispatcher) registerBuiltins() {
	d.builtins = map[string]Builtin{
		"..":       changeDirBuiltin(".."),
		"...":      changeDirBuiltin(twoLevelsUp),
		"home":     homeBuiltin,
		"alias":    aliasBuiltin,
		"bookmark": bookmarkBuiltin,
		"history":  historyBuiltin,
		"clear":    clearBuiltin,
		"cls":      clearBuiltin,
		"help":     helpBuiltin,
		"exit":     exitBuiltin,
		"quit":     exitBuiltin,
	}
}

const twoLevelsUp = "../.."

// BuiltinNames returns the builtin command names, sorted.
func (d *Dispatcher) BuiltinNames() []string {
	names := make([]string, 0, len(d.builtins))
	for name := range d.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func changeDirBuiltin(target string) Builtin {
	return func(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
		return d.reportDirChange(target, out)
	}
}

func homeBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	return d.reportDirChange(d.home, out)
}

func (d *Dispatcher) reportDirChange(target string, out *output) Status {
	if err := d.executor.ChangeDir(d.session, target); err != nil {
		out.errorf("Failed to change directory: %s", err.Message)
		return HandledError
	}
	out.printf("Directory changed to: %s\n", d.session.Dir)
	return Handled
}

func aliasBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	if len(args) == 0 || args[0] == "list" {
		out.printf("\nAvailable aliases:\n")
		for _, e := range d.aliases.Entries() {
			out.printf("%s -> %s\n", e.Name, e.Value)
		}
		return Handled
	}
	switch args[0] {
	case "add":
		name, value, found := strings.Cut(strings.Join(args[1:], " "), "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !found || name == "" {
			out.errorf("Usage: alias add name=command\n")
			return HandledError
		}
		if err := d.addAlias(ctx, name, value); err != nil {
			out.errorf("%s\n", err.Message)
			return HandledError
		}
		out.printf("Alias '%s' created -> %s\n", name, value)
		return Handled
	case "remove":
		if len(args) < 2 {
			out.errorf("Usage: alias remove name\n")
			return HandledError
		}
		name := strings.TrimSpace(args[1])
		if err := d.removeAlias(ctx, name); err != nil {
			out.errorf("%s\n", err.Message)
			return HandledError
		}
		out.printf("Alias '%s' removed\n", name)
		return Handled
	case "help":
		out.printf("\nAlias Commands:\n")
		out.printf("  alias list          - List all aliases\n")
		out.printf("  alias add name=cmd  - Create new alias\n")
		out.printf("  alias remove name   - Remove an alias\n")
		out.printf("  alias help          - Show this help\n")
		return Handled
	}
	out.errorf("Unknown alias command. Try \"alias help\" for usage.\n")
	return HandledError
}

func bookmarkBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	if len(args) == 0 {
		return NotBuiltin
	}
	switch {
	case args[0] == "add" && len(args) > 1:
		d.bookmarks.set(args[1], d.session.Dir)
		out.printf("Bookmark '%s' created for %s\n", args[1], d.session.Dir)
		return Handled
	case args[0] == "list":
		out.printf("\nBookmarked directories:\n")
		for _, b := range d.bookmarks.list() {
			out.printf("%s -> %s\n", b.Name, b.Path)
		}
		return Handled
	case args[0] == "go" && len(args) > 1:
		if err := d.gotoBookmark(args[1]); err != nil {
			out.errorf("%s\n", err.Message)
			return HandledError
		}
		out.printf("Changed directory to %s\n", d.session.Dir)
		return Handled
	}
	return NotBuiltin
}

func historyBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	if len(args) == 0 {
		out.printf("\nCommand History:\n")
		for i, command := range d.history.Entries() {
			out.printf("%d: %s\n", i+1, command)
		}
		return Handled
	}
	if args[0] == "clear" {
		d.clearHistory(ctx)
		out.printf("Command history cleared\n")
		return Handled
	}
	return NotBuiltin
}

func clearBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	out.clear = true
	return Handled
}

func exitBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	out.exit = true
	return Handled
}

func helpBuiltin(ctx context.Context, d *Dispatcher, args []string, out *output) Status {
	out.printf("Productivity Features:\n")
	out.printf("- Use \"alias list\" to see all aliases\n")
	out.printf("- Use \"alias add name=command\" to create new alias\n")
	out.printf("- Use \"bookmark add name\" to bookmark current directory\n")
	out.printf("- Use \"bookmark list\" to see all bookmarks\n")
	out.printf("- Use \"bookmark go name\" to navigate to bookmark\n")
	out.printf("- Use \"history\" to see full command history\n")
	out.printf("- Press Ctrl+R to search history\n")
	out.printf("Builtins: %s\n", strings.Join(d.BuiltinNames(), " "))
	return Handled
}
