package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chzyer/readline"

	"advterm/internal/shell"
)

const clearScreen = "\033[H\033[2J"

// runLine drives the dispatcher from a plain terminal through readline.
func runLine(ctx context.Context, d *shell.Dispatcher, logger *slog.Logger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            d.Prompt(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistoryLimit:      d.Settings().HistoryLimit(),
		HistorySearchFold: true,
		AutoComplete:      newCompleter(d),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	for _, line := range d.History() {
		rl.SaveHistory(line)
	}

	for {
		rl.SetPrompt(d.Prompt())
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		cmdCtx, stop := notifyInterrupt(ctx)
		reply := d.Submit(cmdCtx, input)
		stop()
		logger.Debug("command completed", "command", reply.Command, "error", reply.IsError)

		if reply.Clear {
			fmt.Fprint(rl.Stdout(), clearScreen)
		}
		printReply(rl.Stdout(), rl.Stderr(), reply)
		if reply.Exit {
			break
		}
	}

	if d.Settings().ClearOnClose {
		fmt.Fprint(os.Stdout, clearScreen)
	}
	return nil
}
