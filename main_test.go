package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advterm/internal/config"
	"advterm/internal/runner"
	"advterm/internal/shell"
	"advterm/internal/store"
)

type nopRunner struct{}

func (nopRunner) Run(ctx context.Context, command, dir string) runner.Result {
	return runner.Result{Success: true}
}

func newTestDispatcher(t *testing.T) *shell.Dispatcher {
	t.Helper()
	d, err := shell.New(context.Background(), shell.Options{
		Store:  store.NewPersistent(store.NewMemory()),
		Runner: nopRunner{},
		Home:   t.TempDir(),
	})
	require.NoError(t, err)
	return d
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("store: sqlite\nrunner: gosh\nmode: line\n"), 0644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config-dir", dir, "--store", "memory", "--debug"}))
	f := &flags{}
	f.configDir, _ = cmd.Flags().GetString("config-dir")
	f.store, _ = cmd.Flags().GetString("store")
	f.debug, _ = cmd.Flags().GetBool("debug")

	cfg, err := loadConfig(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, config.RunnerGosh, cfg.Runner)
	assert.Equal(t, config.ModeLine, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config-dir", t.TempDir(), "--mode", "gui"}))
	f := &flags{}
	f.configDir, _ = cmd.Flags().GetString("config-dir")
	f.mode, _ = cmd.Flags().GetString("mode")

	_, err := loadConfig(cmd, f)
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		backend string
		want    interface{}
	}{
		{config.StoreFile, &store.File{}},
		{config.StoreSQLite, &store.SQLite{}},
		{config.StoreMemory, &store.Memory{}},
	} {
		t.Run(tc.backend, func(t *testing.T) {
			s, closeFn, err := openStore(&config.Config{ConfigDir: dir, Store: tc.backend})
			require.NoError(t, err)
			defer closeFn()
			assert.IsType(t, tc.want, s)
		})
	}
	assert.FileExists(t, filepath.Join(dir, "advterm.db"))
}

func TestOneShotCommand(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config-dir", dir, "--store", "memory", "-c", "cd /definitely/not/here"})
	assert.Error(t, cmd.Execute())
}

func TestPrintReplySplitsStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	printReply(&stdout, &stderr, shell.Reply{Segments: []shell.Segment{
		{Text: "> ls\n"},
		{Text: "boom\n", IsError: true},
	}})
	assert.Equal(t, "> ls\n", stdout.String())
	assert.Equal(t, "boom\n", stderr.String())
}

func TestCompleter(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.AddAlias(context.Background(), "gs", "git status"))
	c := newCompleter(d)
	c.lookPath = func() []string { return []string{"grep", "gzip", "grep"} }

	suffix, names := c.Complete("hist")
	assert.Equal(t, "ory ", suffix)
	assert.Equal(t, []string{"history"}, names)

	suffix, names = c.Complete("g")
	assert.Equal(t, "", suffix)
	assert.ElementsMatch(t, []string{"grep", "gs", "gzip"}, names)

	suffix, names = c.Complete("gr")
	assert.Equal(t, "ep ", suffix)
	assert.Equal(t, []string{"grep"}, names)

	suffix, names = c.Complete("git st")
	assert.Empty(t, suffix)
	assert.Empty(t, names)
}

func TestCompleterMultiByteNames(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	for _, name := range []string{"zé1", "zè2", "véa", "véb"} {
		require.NoError(t, d.AddAlias(ctx, name, "pwd"))
	}
	c := newCompleter(d)
	c.lookPath = func() []string { return nil }

	suffix, names := c.Complete("z")
	assert.Equal(t, "", suffix)
	assert.ElementsMatch(t, []string{"zé1", "zè2"}, names)

	suffix, _ = c.Complete("v")
	assert.Equal(t, "é", suffix)
	assert.True(t, utf8.ValidString(suffix))
}
