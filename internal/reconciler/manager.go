package reconciler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrManagerClosed = errors.New("reconciler manager is closed")

// Manager hands out one running reconciler per buyer, started lazily on
// first use and all stopped together on shutdown.
type Manager struct {
	backend  OrderBackend
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	active map[string]*Reconciler
	closed bool
}

func NewManager(backend OrderBackend, interval time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		backend:  backend,
		interval: interval,
		logger:   logger,
		active:   make(map[string]*Reconciler),
	}
}

// For returns the buyer's reconciler, starting one if none is running.
func (m *Manager) For(buyerID string) (*Reconciler, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if r, ok := m.active[buyerID]; ok {
		return r, nil
	}

	r := New(m.backend, buyerID, m.interval, m.logger)
	r.Start(context.Background())
	m.active[buyerID] = r
	return r, nil
}

// Close stops every running reconciler and refuses further use.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	active := m.active
	m.active = nil
	m.mu.Unlock()

	for buyerID, r := range active {
		r.Stop()
		m.logger.Debug().Str("buyer_id", buyerID).Msg("reconciler stopped")
	}
}
