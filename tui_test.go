package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestSearchAcceptWithoutMatchKeepsInput(t *testing.T) {
	d := newTestDispatcher(t)
	d.Submit(context.Background(), "ls -la")
	s := newScreen(context.Background(), d, slog.Default())
	s.input = "half typed"

	s.handleKey(key(tcell.KeyCtrlR))
	s.handleKey(runeKey('z'))
	require.Empty(t, d.Search().Matches)
	s.handleKey(key(tcell.KeyEnter))

	assert.Equal(t, "half typed", s.input)
	assert.False(t, s.busy)
	assert.False(t, d.Search().Active)
}

func TestSearchAcceptWithMatchSubmits(t *testing.T) {
	d := newTestDispatcher(t)
	d.Submit(context.Background(), "ls -la")
	s := newScreen(context.Background(), d, slog.Default())
	s.input = "half typed"

	s.handleKey(key(tcell.KeyCtrlR))
	s.handleKey(runeKey('l'))
	require.Equal(t, "ls -la", d.Search().Preview)
	s.handleKey(key(tcell.KeyEnter))

	assert.Empty(t, s.input)
	assert.True(t, s.busy)
}
