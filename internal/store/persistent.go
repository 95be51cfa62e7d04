package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"advterm/internal/alias"
	"advterm/internal/config"
)

// Persistent encodes the shell's collections to JSON over a Store.
// Writes to the same key are serialized; different keys proceed independently.
type Persistent struct {
	store Store
	mu    sync.Mutex
	locks map[Key]*sync.Mutex
}

// NewPersistent wraps s.
func NewPersistent(s Store) *Persistent {
	return &Persistent{
		store: s,
		locks: make(map[Key]*sync.Mutex),
	}
}

func (p *Persistent) lock(key Key) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	return l
}

func (p *Persistent) load(ctx context.Context, key Key, target interface{}) (bool, error) {
	l := p.lock(key)
	l.Lock()
	defer l.Unlock()
	data, err := p.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (p *Persistent) save(ctx context.Context, key Key, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	l := p.lock(key)
	l.Lock()
	defer l.Unlock()
	return p.store.Save(ctx, key, data)
}

// LoadHistory returns the saved history, or an empty one if none was saved.
func (p *Persistent) LoadHistory(ctx context.Context) ([]string, error) {
	var entries []string
	if _, err := p.load(ctx, History, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []string{}
	}
	return entries, nil
}

// SaveHistory writes entries as a JSON array.
func (p *Persistent) SaveHistory(ctx context.Context, entries []string) error {
	if entries == nil {
		entries = []string{}
	}
	return p.save(ctx, History, entries)
}

// LoadAliases returns the saved alias table. found is false when nothing was saved.
func (p *Persistent) LoadAliases(ctx context.Context) (table *alias.Table, found bool, err error) {
	table = alias.NewTable()
	found, err = p.load(ctx, Aliases, table)
	if err != nil {
		return nil, false, err
	}
	return table, found, nil
}

// SaveAliases writes the table as a JSON object in insertion order.
func (p *Persistent) SaveAliases(ctx context.Context, table *alias.Table) error {
	return p.save(ctx, Aliases, table)
}

// LoadSettings overlays the saved settings on the defaults.
func (p *Persistent) LoadSettings(ctx context.Context) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if _, err := p.load(ctx, Settings, settings); err != nil {
		return config.DefaultSettings(), err
	}
	return settings, nil
}

// SaveSettings writes settings, including keys the shell does not recognise.
func (p *Persistent) SaveSettings(ctx context.Context, settings *config.Settings) error {
	return p.save(ctx, Settings, settings)
}
