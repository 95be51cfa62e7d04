package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advterm/internal/alias"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	db, err := OpenSQLite(filepath.Join(dir, "db", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(dir, "nested", "config")),
		"sqlite": db,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx, History)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, History, []byte(`["ls"]`)))
			require.NoError(t, s.Save(ctx, Aliases, []byte(`{"a":"b"}`)))
			require.NoError(t, s.Save(ctx, History, []byte(`["ls","pwd"]`)))

			data, err := s.Load(ctx, History)
			require.NoError(t, err)
			assert.Equal(t, `["ls","pwd"]`, string(data))

			data, err = s.Load(ctx, Aliases)
			require.NoError(t, err)
			assert.Equal(t, `{"a":"b"}`, string(data))
		})
	}
}

func TestFileCreatesDirectoryOnWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s := NewFile(dir)
	require.NoError(t, s.Save(context.Background(), Settings, []byte(`{}`)))

	info, err := os.Stat(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestFileSaveFailsWhenBaseIsAFile(t *testing.T) {
	base := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0644))

	s := NewFile(base)
	assert.Error(t, s.Save(context.Background(), Settings, []byte(`{}`)))
}

func TestPersistentRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p := NewPersistent(s)

			history := []string{"ls -la", "cd foo", "ls -la", "echo \"quoted\""}
			require.NoError(t, p.SaveHistory(ctx, history))

			aliases := alias.NewTable()
			aliases.Set("zz", "echo z")
			aliases.Set("Gs", "git status")
			aliases.Set("eq", "echo a=b")
			require.NoError(t, p.SaveAliases(ctx, aliases))

			reloaded := NewPersistent(s)
			gotHistory, err := reloaded.LoadHistory(ctx)
			require.NoError(t, err)
			assert.Equal(t, history, gotHistory)

			gotAliases, found, err := reloaded.LoadAliases(ctx)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, aliases.Entries(), gotAliases.Entries())
		})
	}
}

func TestPersistentMissingKeys(t *testing.T) {
	ctx := context.Background()
	p := NewPersistent(NewMemory())

	history, err := p.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)

	table, found, err := p.LoadAliases(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, table.Len())

	settings, err := p.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, settings.HistoryLimit())
}

func TestPersistentCorruptData(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, History, []byte(`{not json`)))
	require.NoError(t, m.Save(ctx, Settings, []byte(`[]`)))
	p := NewPersistent(m)

	_, err := p.LoadHistory(ctx)
	assert.Error(t, err)

	settings, err := p.LoadSettings(ctx)
	assert.Error(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, 14, settings.FontSize)
}

func TestPersistentSettingsKeepUnknownKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, Settings, []byte(`{"fontSize": 20, "theme": "solarized"}`)))
	p := NewPersistent(m)

	settings, err := p.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, settings.FontSize)
	require.NoError(t, p.SaveSettings(ctx, settings))

	data, err := m.Load(ctx, Settings)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "solarized"`)
}
