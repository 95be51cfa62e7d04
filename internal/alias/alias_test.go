package alias

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	table := NewTable()
	table.Set("gs", "git status")
	table.Set("ll", "ls -l")
	table.Set("lll", "ll -a")

	tests := []struct {
		name     string
		input    string
		expected string
		resolved bool
	}{
		{name: "no args", input: "gs", expected: "git status", resolved: true},
		{name: "args reattached", input: "ll  /tmp   -h", expected: "ls -l /tmp -h", resolved: true},
		{name: "case insensitive", input: "GS --short", expected: "git status --short", resolved: true},
		{name: "not recursive", input: "lll", expected: "ll -a", resolved: true},
		{name: "unknown", input: "echo hi", expected: "echo hi", resolved: false},
		{name: "alias only as first token", input: "echo gs", expected: "echo gs", resolved: false},
		{name: "empty", input: "   ", expected: "   ", resolved: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Resolve(tt.input)
			assert.Equal(t, tt.resolved, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSetOverwriteKeepsPosition(t *testing.T) {
	table := NewTable()
	table.Set("a", "1")
	table.Set("B", "2")
	table.Set("c", "3")
	table.Set("b", "two")

	assert.Equal(t, []Entry{{"a", "1"}, {"b", "two"}, {"c", "3"}}, table.Entries())
	assert.Equal(t, 3, table.Len())
}

func TestRemove(t *testing.T) {
	table := NewTable()
	table.Set("Foo", "echo hi")
	table.Set("bar", "echo bar")

	assert.True(t, table.Remove("foo"))
	assert.False(t, table.Remove("foo"))
	_, ok := table.Get("Foo")
	assert.False(t, ok)
	assert.Equal(t, []string{"bar"}, table.Names())
}

func TestJSONKeepsOrder(t *testing.T) {
	input := `{"zeta": "echo z", "Alpha": "echo a=b", "mid": "ls \"x y\""}`
	table := NewTable()
	require.NoError(t, json.Unmarshal([]byte(input), table))
	assert.Equal(t, []string{"zeta", "Alpha", "mid"}, table.Names())

	data, err := json.MarshalIndent(table, "", "  ")
	require.NoError(t, err)

	reloaded := NewTable()
	require.NoError(t, json.Unmarshal(data, reloaded))
	assert.Equal(t, table.Entries(), reloaded.Entries())
}

func TestUnmarshalRejectsArray(t *testing.T) {
	table := NewTable()
	assert.Error(t, json.Unmarshal([]byte(`["ls"]`), table))
}

func TestDefaults(t *testing.T) {
	table := Defaults("/home/user")
	value, ok := table.Get("downloads")
	require.True(t, ok)
	assert.Equal(t, `cd "/home/user/Downloads"`, value)
}
