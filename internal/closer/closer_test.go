package closer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCloseAll_ReverseOrder(t *testing.T) {
	c := New()
	var order []string
	for _, name := range []string{"db", "sessions", "server"} {
		c.AddNamed(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, c.CloseAll(t.Context()))
	assert.Equal(t, []string{"server", "sessions", "db"}, order)
}

func TestCloseAll_JoinsErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	c := New()
	c.SetLogger(zap.New(core))

	boom := errors.New("boom")
	ran := false
	c.AddNamed("first", func(context.Context) error { ran = true; return nil })
	c.AddNamed("second", func(context.Context) error { return boom })

	err := c.CloseAll(t.Context())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "second")
	assert.True(t, ran, "hooks after a failure still run")
	assert.Equal(t, 1, logs.FilterMessage("close failed").Len())
}

func TestCloseAll_Once(t *testing.T) {
	c := New()
	calls := 0
	c.AddNamed("x", func(context.Context) error { calls++; return nil })

	require.NoError(t, c.CloseAll(t.Context()))
	require.NoError(t, c.CloseAll(t.Context()))
	c.AddNamed("late", func(context.Context) error { calls++; return nil })
	require.NoError(t, c.CloseAll(t.Context()))

	assert.Equal(t, 1, calls)
}
