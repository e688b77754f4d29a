package manager

import (
	"context"
	"time"

	"authd/internal/store"
)

const flightKey = "connect"

// Start begins connecting in the background and returns immediately.
// Calling it again is a no-op. A missing target is reported synchronously.
func (m *Manager) Start() error {
	if m.cfg.Target == "" {
		return m.configError()
	}
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.bg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.bg.Done()
		if _, err := m.Connect(m.base); err != nil {
			m.log.Debug().Err(err).Msg("initial connect did not succeed")
		}
	}()
	return nil
}

// Connect returns a live handle, dialing if needed. A healthy cached handle is
// returned without I/O. Concurrent callers share one in-flight attempt; ctx
// only bounds this caller's wait, never the attempt itself.
func (m *Manager) Connect(ctx context.Context) (store.Handle, error) {
	if m.cfg.Target == "" {
		return nil, m.configError()
	}
	m.mu.RLock()
	if m.readyLocked() {
		h := m.handle
		m.mu.RUnlock()
		return h, nil
	}
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	ch := m.flight.DoChan(flightKey, func() (any, error) {
		return m.attempt()
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(store.Handle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// attempt runs one dial. Only ever invoked through m.flight.
func (m *Manager) attempt() (store.Handle, error) {
	m.mu.Lock()
	if m.readyLocked() {
		h := m.handle
		m.mu.Unlock()
		return h, nil
	}
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	stale := m.handle
	m.handle = nil
	m.stopRetryLocked()
	m.attempts++
	n := m.attempts
	m.lastAttempt = m.clock.Now()
	m.setPhaseLocked(PhaseConnecting)
	m.mu.Unlock()

	if stale != nil {
		m.log.Info().Uint64("attempt", n).Msg("event=handle_unhealthy reconnecting")
		cctx, cancel := context.WithTimeout(context.Background(), m.cfg.ConnectTimeout)
		_ = stale.Close(cctx)
		cancel()
	}

	m.log.Info().Uint64("attempt", n).Msg("event=connect_start")
	m.publish(EventConnectStart, n, nil)
	start := time.Now()
	ctx, cancel := context.WithTimeout(m.base, m.cfg.ConnectTimeout)
	h, err := m.dialer.Dial(ctx, m.cfg.Target, m.cfg.storeOptions())
	cancel()
	dur := time.Since(start)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		if h != nil {
			_ = h.Close(context.Background())
		}
		return nil, ErrClosed
	}
	if err != nil {
		ce := newConnectError(err)
		m.lastErr = ce
		m.setPhaseLocked(PhaseFailed)
		connectAttempts.WithLabelValues("failure").Inc()
		m.log.Warn().Uint64("attempt", n).Str("code", ce.Code).Dur("dur", dur).
			Str("trace", ce.Trace).Msg("event=connect_failed")
		m.publish(EventConnectFailed, n, map[string]any{"code": ce.Code, "error": ce.Message})
		m.scheduleRetryLocked(n)
		m.mu.Unlock()
		return nil, ce
	}
	m.handle = h
	m.lastErr = nil
	m.setPhaseLocked(PhaseConnected)
	m.mu.Unlock()
	connectAttempts.WithLabelValues("success").Inc()
	m.log.Info().Uint64("attempt", n).Dur("dur", dur).Msg("event=connect_ready")
	m.publish(EventConnectReady, n, map[string]any{"dur_ms": int(dur / time.Millisecond)})
	return h, nil
}

func (m *Manager) configError() error {
	err := ErrConfiguration("connection target is not set")
	m.mu.Lock()
	m.lastErr = &ConnectError{Message: err.Error(), Code: "configuration", Err: err}
	m.mu.Unlock()
	m.log.Error().Err(err).Msg("event=config_error")
	m.publish(EventConfigError, 0, map[string]any{"error": err.Error()})
	return err
}
