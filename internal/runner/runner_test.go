//go:build !windows

package runner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunsInDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644))

	r := NewExec("", 0)
	result := r.Run(context.Background(), "ls", dir)
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "marker.txt")
}

func TestExecDoesNotKeepDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	r := NewExec("", 0)
	require.True(t, r.Run(context.Background(), "cd sub", dir).Success)

	result := r.Run(context.Background(), "pwd -P", dir)
	require.True(t, result.Success)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, strings.TrimSpace(result.Output))
}

func TestExecFailureCarriesStderr(t *testing.T) {
	r := NewExec("", 0)
	result := r.Run(context.Background(), "echo boom 1>&2; exit 3", t.TempDir())
	assert.False(t, result.Success)
	assert.Equal(t, "boom\n", result.Error)
}

func TestExecFailureWithoutStderr(t *testing.T) {
	r := NewExec("", 0)
	result := r.Run(context.Background(), "exit 4", t.TempDir())
	assert.False(t, result.Success)
	assert.Equal(t, "command exited with code 4\n", result.Error)
}

func TestExecSpawnFailure(t *testing.T) {
	r := NewExec("/nonexistent/shell", 0)
	result := r.Run(context.Background(), "ls", t.TempDir())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestExecTimeout(t *testing.T) {
	r := NewExec("", 50*time.Millisecond)
	result := r.Run(context.Background(), "sleep 5", t.TempDir())
	assert.False(t, result.Success)
}

func TestQuoteDir(t *testing.T) {
	assert.Equal(t, `'/tmp/it'\''s here'`, quoteDir("/tmp/it's here"))
}

func newTestGosh(t *testing.T) *Gosh {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash is not available")
	}
	g, err := NewGosh(context.Background(), 5*time.Second, nil)
	require.NoError(t, err)
	return g
}

func TestGoshRunsInDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0644))

	g := newTestGosh(t)
	result := g.Run(context.Background(), "ls", dir)
	require.True(t, result.Success, result.Error)
	assert.Contains(t, result.Output, "marker.txt")
}

func TestGoshFailureReportsExitStatus(t *testing.T) {
	g := newTestGosh(t)
	result := g.Run(context.Background(), "exit 4", t.TempDir())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestGoshSessionSurvivesExit(t *testing.T) {
	dir := t.TempDir()
	g := newTestGosh(t)

	require.True(t, g.Run(context.Background(), "pwd", dir).Success)
	result := g.Run(context.Background(), "echo boom 1>&2; exit 3", dir)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)

	for i := 0; i < 2; i++ {
		result = g.Run(context.Background(), "echo alive", dir)
		require.True(t, result.Success, result.Error)
		assert.Contains(t, result.Output, "alive")
	}
}

func TestGoshDoesNotKeepDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	g := newTestGosh(t)
	require.True(t, g.Run(context.Background(), "cd sub", dir).Success)
	require.True(t, g.Run(context.Background(), "cd /", dir).Success)

	result := g.Run(context.Background(), "pwd -P", dir)
	require.True(t, result.Success, result.Error)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, strings.TrimSpace(result.Output))
}
