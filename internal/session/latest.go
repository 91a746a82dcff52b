package session

import (
	"context"
	"sync"
)

// State is the last published outcome of a Latest.
type State[T any] struct {
	Value T
	Err   error
	// Done is false until a fetch has completed.
	Done bool
}

// Latest keeps the result of the most recent fetch only. Pushing a new fetch
// cancels the one in flight; a fetch that completes after being superseded,
// or after Close, is discarded.
type Latest[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[T]
	closed bool
	wg     sync.WaitGroup
}

// Push starts fetch in a new goroutine bound to ctx. The previous fetch, if
// any, is cancelled. The state keeps its last value until fetch publishes.
func (l *Latest[T]) Push(ctx context.Context, fetch func(context.Context) (T, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if l.cancel != nil {
		l.cancel()
	}

	l.gen++
	gen := l.gen
	fctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer cancel()

		v, err := fetch(fctx)

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closed || gen != l.gen || fctx.Err() != nil {
			return
		}
		l.state = State[T]{Value: v, Err: err, Done: true}
	}()
}

// Reset forgets the published state, so readers see a pending fetch again.
func (l *Latest[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = State[T]{}
}

// State returns the last published result.
func (l *Latest[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close cancels the fetch in flight and waits for every fetch goroutine to
// return. Later pushes are ignored.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()

	l.wg.Wait()
}
