// Package closer collects shutdown hooks and runs them in reverse order of
// registration.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type entry struct {
	name string
	fn   func(context.Context) error
}

type Closer struct {
	mu     sync.Mutex
	log    *zap.Logger
	funcs  []entry
	closed bool
}

func New() *Closer {
	return &Closer{log: zap.NewNop()}
}

func (c *Closer) SetLogger(l *zap.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}

// AddNamed registers fn under name. Hooks added after CloseAll are ignored.
func (c *Closer) AddNamed(name string, fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.funcs = append(c.funcs, entry{name: name, fn: fn})
}

// CloseAll runs every hook, last added first, and joins their errors. Only
// the first call runs the hooks.
func (c *Closer) CloseAll(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	funcs, log := c.funcs, c.log
	c.funcs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		e := funcs[i]
		if err := e.fn(ctx); err != nil {
			log.Error("close failed", zap.String("name", e.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
			continue
		}
		log.Debug("closed", zap.String("name", e.name))
	}
	return errors.Join(errs...)
}
