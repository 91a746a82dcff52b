package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ccpricing/internal/catalog"
)

func TestManager_GetTouches(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(catalog.NewStatic(), testOptions())
	m.now = func() time.Time { return now }
	defer m.Shutdown(context.Background())

	s := m.Open(context.Background())
	assert.Equal(t, now, s.LastSeen())

	now = now.Add(30 * time.Second)
	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, now, s.LastSeen())
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(catalog.NewStatic(), testOptions())
	m.now = func() time.Time { return now }
	defer m.Shutdown(context.Background())

	idle := m.Open(context.Background())
	now = now.Add(45 * time.Second)
	active := m.Open(context.Background())

	assert.Equal(t, 0, m.Sweep(now))
	assert.Equal(t, 1, m.Sweep(now.Add(30*time.Second)))
	assert.Equal(t, 1, m.Len())

	_, err := m.Get(idle.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(active.ID())
	assert.NoError(t, err)
	assert.ErrorIs(t, idle.Context().Err(), context.Canceled)
}

func TestManager_RunStops(t *testing.T) {
	opts := testOptions()
	opts.TTL = 10 * time.Millisecond
	m := NewManager(catalog.NewStatic(), opts)
	defer m.Shutdown(context.Background())

	m.Open(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(catalog.NewStatic(), testOptions())
	a := m.Open(context.Background())
	m.Open(context.Background())

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, a.Context().Err(), context.Canceled)
}
