// Package store persists the shell's history, aliases and settings.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when nothing was saved under a key.
var ErrNotFound = errors.New("not found")

// Key names one of the persisted collections.
type Key string

const (
	History  Key = "history"
	Aliases  Key = "aliases"
	Settings Key = "settings"
)

// Store is a byte-oriented key/value backend.
type Store interface {
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, key Key, data []byte) error
}

// Memory keeps everything in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[Key][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[Key][]byte)}
}

func (m *Memory) Load(ctx context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Save(ctx context.Context, key Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
