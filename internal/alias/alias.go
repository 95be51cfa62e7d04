// Package alias holds the user alias table and first-token expansion.
package alias

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Entry is a single alias as the user spelled it.
type Entry struct {
	Name  string
	Value string
}

// Table maps alias names to expansions. Lookups ignore case; the name keeps
// the spelling it was last set with. Iteration follows insertion order.
type Table struct {
	order   []string
	entries map[string]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Defaults returns the aliases seeded on first start.
func Defaults(home string) *Table {
	t := NewTable()
	t.Set("ll", "ls -l")
	t.Set("desktop", fmt.Sprintf("cd %q", filepath.Join(home, "Desktop")))
	t.Set("downloads", fmt.Sprintf("cd %q", filepath.Join(home, "Downloads")))
	t.Set("documents", fmt.Sprintf("cd %q", filepath.Join(home, "Documents")))
	return t
}

func key(name string) string {
	return strings.ToLower(name)
}

// Set registers or overwrites an alias. An overwrite keeps the original position.
func (t *Table) Set(name, value string) {
	k := key(name)
	if _, ok := t.entries[k]; !ok {
		t.order = append(t.order, k)
	}
	t.entries[k] = Entry{Name: name, Value: value}
}

// Get returns the expansion for name.
func (t *Table) Get(name string) (string, bool) {
	e, ok := t.entries[key(name)]
	return e.Value, ok
}

// Remove deletes name and reports whether it existed.
func (t *Table) Remove(name string) bool {
	k := key(name)
	if _, ok := t.entries[k]; !ok {
		return false
	}
	delete(t.entries, k)
	for i, o := range t.order {
		if o == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	return len(t.order)
}

// Entries returns the aliases in insertion order.
func (t *Table) Entries() []Entry {
	result := make([]Entry, 0, len(t.order))
	for _, k := range t.order {
		result = append(result, t.entries[k])
	}
	return result
}

// Names returns the alias names in insertion order.
func (t *Table) Names() []string {
	result := make([]string, 0, len(t.order))
	for _, k := range t.order {
		result = append(result, t.entries[k].Name)
	}
	return result
}

// Resolve expands the first whitespace-separated token of line. The remaining
// tokens are re-attached with single spaces. Expansion is applied once: an
// alias whose value starts with another alias name is not expanded again.
func (t *Table) Resolve(line string) (string, bool) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return line, false
	}
	expanded, ok := t.Get(parts[0])
	if !ok {
		return line, false
	}
	if len(parts) > 1 {
		expanded += " " + strings.Join(parts[1:], " ")
	}
	return expanded, true
}

// MarshalJSON writes the table as a JSON object in insertion order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the table with the object in data, keeping the key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("aliases: expected object, got %v", tok)
	}
	t.order = nil
	t.entries = make(map[string]Entry)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("aliases: unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("aliases: %s: %w", name, err)
		}
		t.Set(name, value)
	}
	_, err = dec.Token()
	return err
}
