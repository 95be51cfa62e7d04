package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"advterm/internal/shell"
)

// screen is the full-screen front-end: a scrolling output pane above a
// one-line prompt whose input buffer is edited by the key handler.
type screen struct {
	ctx       context.Context
	d         *shell.Dispatcher
	logger    *slog.Logger
	completer *commandCompleter

	app    *tview.Application
	output *tview.TextView
	prompt *tview.TextView

	// Only touched on the event goroutine.
	input  string
	busy   bool
	cancel context.CancelFunc
}

func runTUI(ctx context.Context, d *shell.Dispatcher, logger *slog.Logger) error {
	s := newScreen(ctx, d, logger)
	s.updatePrompt()
	if err := s.app.Run(); err != nil {
		return fmt.Errorf("terminal screen failed: %w", err)
	}
	return nil
}

func newScreen(ctx context.Context, d *shell.Dispatcher, logger *slog.Logger) *screen {
	s := &screen{
		ctx:       ctx,
		d:         d,
		logger:    logger,
		completer: newCompleter(d),
		app:       tview.NewApplication(),
	}

	settings := d.Settings()
	background := tcell.GetColor(settings.BackgroundColor)
	foreground := tcell.GetColor(settings.TextColor)

	s.output = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true).
		SetScrollable(true)
	s.output.SetBackgroundColor(background)
	s.output.SetTextColor(foreground)
	s.output.SetBorder(true).SetTitle("Advanced Terminal")

	s.prompt = tview.NewTextView().SetDynamicColors(true)
	s.prompt.SetBackgroundColor(background)
	s.prompt.SetTextColor(foreground)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.output, 0, 1, false).
		AddItem(s.prompt, 1, 0, true)
	s.app.SetRoot(layout, true).EnableMouse(true).SetInputCapture(s.handleKey)
	return s
}

func (s *screen) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		if s.busy && s.cancel != nil {
			s.cancel()
			return nil
		}
		return event
	}
	if s.busy {
		return nil
	}
	if s.d.Search().Active {
		s.handleSearchKey(event)
		s.updatePrompt()
		return nil
	}

	switch event.Key() {
	case tcell.KeyEnter:
		line := s.input
		s.input = ""
		s.submit(func(ctx context.Context) (shell.Reply, bool) {
			return s.d.Submit(ctx, line), true
		})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(s.input); len(r) > 0 {
			s.input = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		s.input += string(event.Rune())
	case tcell.KeyUp:
		if line, ok := s.d.HistoryUp(); ok {
			s.input = line
		}
	case tcell.KeyDown:
		if line, ok := s.d.HistoryDown(); ok {
			s.input = line
		}
	case tcell.KeyTab:
		s.complete()
	case tcell.KeyCtrlR:
		s.d.StartSearch()
	default:
		return event
	}
	s.updatePrompt()
	return nil
}

func (s *screen) handleSearchKey(event *tcell.EventKey) {
	switch event.Key() {
	case tcell.KeyRune:
		s.d.AppendSearchChar(event.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.d.BackspaceSearch()
	case tcell.KeyEscape:
		s.d.CancelSearch()
	case tcell.KeyEnter:
		if len(s.d.Search().Matches) == 0 {
			// Leaves search mode; the typed line stays as it was.
			s.d.AcceptSearch(s.ctx)
			return
		}
		s.input = ""
		s.submit(s.d.AcceptSearch)
	}
}

func (s *screen) complete() {
	suffix, names := s.completer.Complete(s.input)
	if len(names) > 1 && suffix == "" {
		fmt.Fprintf(s.output, "%s\n", tview.Escape(strings.Join(names, "  ")))
		s.output.ScrollToEnd()
	}
	s.input += suffix
}

// submit runs fn off the event goroutine and renders its reply when it is done.
func (s *screen) submit(fn func(ctx context.Context) (shell.Reply, bool)) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.busy = true
	s.cancel = cancel
	go func() {
		reply, ok := fn(ctx)
		cancel()
		s.app.QueueUpdateDraw(func() {
			s.busy = false
			s.cancel = nil
			if ok {
				s.render(reply)
			}
			s.updatePrompt()
		})
	}()
}

func (s *screen) render(reply shell.Reply) {
	s.logger.Debug("command completed", "command", reply.Command, "error", reply.IsError)
	if reply.Clear {
		s.output.Clear()
	}
	for _, seg := range reply.Segments {
		if seg.IsError {
			fmt.Fprintf(s.output, "[red]%s[-]", tview.Escape(seg.Text))
			continue
		}
		fmt.Fprint(s.output, tview.Escape(seg.Text))
	}
	s.output.ScrollToEnd()
	if reply.NewDirectory != "" {
		s.output.SetTitle(reply.NewDirectory)
	}
	if reply.Exit {
		s.app.Stop()
	}
}

func (s *screen) updatePrompt() {
	s.prompt.Clear()
	// The dispatcher is locked for the whole command.
	if s.busy {
		fmt.Fprintf(s.prompt, "[yellow]running...[-] %s", tview.Escape(s.input))
		return
	}
	if state := s.d.Search(); state.Active {
		fmt.Fprintf(s.prompt, "(reverse-i-search)`%s': %s_",
			tview.Escape(state.Buffer), tview.Escape(state.Preview))
		return
	}
	fmt.Fprintf(s.prompt, "%s%s_", tview.Escape(s.d.Prompt()), tview.Escape(s.input))
}
