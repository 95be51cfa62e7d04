package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"advterm/internal/config"
	"advterm/internal/runner"
	"advterm/internal/shell"
	"advterm/internal/store"
)

type flags struct {
	configPath string
	configDir  string
	store      string
	runner     string
	mode       string
	shell      string
	command    string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "advterm",
		Short:         "Interactive shell with aliases, bookmarks and history search",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, f)
			if err != nil {
				fmt.Fprintln(os.Stderr, "advterm:", err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "launcher config file (default <config-dir>/config.yaml)")
	cmd.Flags().StringVar(&f.configDir, "config-dir", "", "directory holding history, aliases and settings")
	cmd.Flags().StringVar(&f.store, "store", "", "storage backend: file, sqlite or memory")
	cmd.Flags().StringVar(&f.runner, "runner", "", "process runner: exec or gosh")
	cmd.Flags().StringVar(&f.mode, "mode", "", "front-end: tui or line")
	cmd.Flags().StringVar(&f.shell, "shell", "", "host shell used for external commands")
	cmd.Flags().StringVarP(&f.command, "command", "c", "", "run a single command and exit")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")
	return cmd
}

func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	path := f.configPath
	if path == "" {
		dir := f.configDir
		if dir == "" {
			dir = config.DefaultConfigDir()
		}
		path = filepath.Join(dir, "config.yaml")
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	set := cmd.Flags().Changed
	if set("config-dir") {
		cfg.ConfigDir = f.configDir
	}
	if set("store") {
		cfg.Store = f.store
	}
	if set("runner") {
		cfg.Runner = f.runner
	}
	if set("mode") {
		cfg.Mode = f.mode
	}
	if set("shell") {
		cfg.Shell = f.shell
	}
	if f.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	oneShot := f.command != ""
	logger, closeLog, err := newLogger(cfg, oneShot)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	backend, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	r, err := openRunner(ctx, cfg)
	if err != nil {
		return err
	}

	d, err := shell.New(ctx, shell.Options{
		Store:  store.NewPersistent(backend),
		Runner: r,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(ctx); err != nil {
			logger.Error("failed to save history on exit", "error", err)
		}
	}()
	logger.Info("session started", "dir", d.Dir(), "store", cfg.Store, "runner", cfg.Runner, "mode", cfg.Mode)

	if oneShot {
		reply := d.Submit(ctx, f.command)
		printReply(os.Stdout, os.Stderr, reply)
		if reply.IsError {
			return fmt.Errorf("command failed")
		}
		return nil
	}

	if cfg.Mode == config.ModeLine {
		return runLine(ctx, d, logger)
	}
	return runTUI(ctx, d, logger)
}

func newLogger(cfg *config.Config, oneShot bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	// The screen owns the terminal in tui mode, so records go to a file instead.
	if cfg.Mode == config.ModeTUI && !oneShot {
		if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(cfg.ConfigDir, "advterm.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = file
		closeFn = func() { file.Close() }
	} else if level > slog.LevelDebug {
		level = slog.LevelWarn
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).
		With("session", uuid.NewString())
	return logger, closeFn, nil
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := store.OpenSQLite(filepath.Join(cfg.ConfigDir, "advterm.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case config.StoreMemory:
		return store.NewMemory(), func() {}, nil
	default:
		return store.NewFile(cfg.ConfigDir), func() {}, nil
	}
}

func openRunner(ctx context.Context, cfg *config.Config) (runner.ProcessRunner, error) {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if cfg.Runner == config.RunnerGosh {
		return runner.NewGosh(ctx, timeout, nil)
	}
	return runner.NewExec(cfg.Shell, timeout), nil
}

func printReply(stdout, stderr io.Writer, reply shell.Reply) {
	for _, s := range reply.Segments {
		if s.IsError {
			fmt.Fprint(stderr, s.Text)
			continue
		}
		fmt.Fprint(stdout, s.Text)
	}
}
