package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm/ccpricing/internal/catalog"
	"github.com/pthm/ccpricing/internal/logger"
)

var ErrNotFound = errors.New("session: not found")

// Options configure new sessions.
type Options struct {
	DefaultCurrency string
	DefaultZone     string
	Products        []string
	// TTL is how long an idle session survives Sweep.
	TTL time.Duration
	// FetchLimit bounds concurrent product fetches per session; 0 means
	// unbounded.
	FetchLimit int
}

// Manager tracks open sessions.
type Manager struct {
	src  catalog.Source
	opts Options
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(src catalog.Source, opts Options) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		src:      src,
		opts:     opts,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session and starts loading its catalog data. The session
// is bound to the manager, not to ctx.
func (m *Manager) Open(ctx context.Context) *Session {
	id := uuid.NewString()
	s := newSession(m.ctx, id, m.src, m.opts, m.now())

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.Debug(ctx, "session opened", logger.String("session", id))
	return s
}

// Get returns the session with id and marks it as seen.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close removes the session and cancels its fetches.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle since before now minus the TTL, and returns
// how many it closed.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.TTL <= 0 {
		return 0
	}
	deadline := now.Add(-m.opts.TTL)

	var expired []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(deadline) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.opts.TTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(m.now()); n > 0 {
				logger.Debug(ctx, "sessions expired", logger.Int("count", n))
			}
		}
	}
}

// Shutdown closes every session.
func (m *Manager) Shutdown(context.Context) error {
	m.cancel()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	return nil
}
