package manager

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"authd/internal/store"
)

// Manager is the single owner of the store connection. It's safe to use
// concurrently from multiple goroutines.
type Manager struct {
	cfg       Config
	dialer    store.Dialer
	clock     clockwork.Clock
	log       zerolog.Logger
	publisher EventPublisher

	// flight collapses concurrent Connect calls into one attempt.
	flight singleflight.Group
	// base is canceled by Close to abort an in-flight dial at shutdown.
	base       context.Context
	cancelBase context.CancelFunc
	bg         sync.WaitGroup

	mu          sync.RWMutex
	phase       Phase
	handle      store.Handle
	lastErr     *ConnectError
	lastAttempt time.Time
	attempts    uint64
	retry       clockwork.Timer
	retryGen    uint64
	started     bool
	closed      bool
}

// New creates a Manager for target using dialer and package defaults.
func New(dialer store.Dialer, target string) *Manager {
	return NewWithConfig(Config{Target: target, Dialer: dialer})
}

// NewWithConfig constructs a Manager from Config.
// It panics if cfg.Dialer is nil.
func NewWithConfig(cfg Config) *Manager {
	if cfg.Dialer == nil {
		panic("manager: Dialer must be provided")
	}
	cfg = cfg.withDefaults()
	base, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:        cfg,
		dialer:     cfg.Dialer,
		clock:      cfg.Clock,
		log:        cfg.Logger.With().Str("component", "store").Logger(),
		publisher:  cfg.Publisher,
		base:       base,
		cancelBase: cancel,
		phase:      PhaseDisconnected,
	}
	observePhase(PhaseDisconnected)
	return m
}

// Ready reports whether a healthy handle is cached.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readyLocked()
}

func (m *Manager) readyLocked() bool {
	return m.phase == PhaseConnected && m.handle != nil && m.handle.Healthy()
}

// Handle returns the cached handle without connecting.
func (m *Manager) Handle() (store.Handle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.phase != PhaseConnected || m.handle == nil {
		return nil, ErrNotReady(nil)
	}
	return m.handle, nil
}

// Close stops retries, aborts an in-flight dial and disconnects the handle.
// It waits for background work until ctx is done.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.stopRetryLocked()
	h := m.handle
	m.handle = nil
	m.setPhaseLocked(PhaseDisconnected)
	m.mu.Unlock()

	m.cancelBase()
	done := make(chan struct{})
	go func() {
		m.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.log.Warn().Err(ctx.Err()).Msg("close: background work still running")
	}

	m.publish(EventClosed, 0, nil)
	if h != nil {
		if err := h.Close(ctx); err != nil {
			m.log.Error().Err(err).Msg("close: disconnect failed")
			return err
		}
	}
	m.log.Info().Msg("event=closed")
	return nil
}

// setPhaseLocked updates the phase and its gauge. m.mu must be held.
func (m *Manager) setPhaseLocked(p Phase) {
	m.phase = p
	observePhase(p)
}

func (m *Manager) publish(name string, attempt uint64, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{Name: name, Attempt: attempt, Fields: fields})
}
