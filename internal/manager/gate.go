package manager

import (
	"context"
	"errors"
)

// Admit gates a request on store readiness. Routes that don't need the store
// pass straight through, as do all routes once a healthy handle is cached.
// Otherwise Admit starts or joins the connect attempt and waits for it,
// returning a not-ready error if it fails. With buffering disabled it never
// waits: it kicks off a connect and fails fast.
//
// Admit is safe to call before anything else touched the manager; it may be
// what triggers the first connect.
func (m *Manager) Admit(ctx context.Context, requiresStore bool) error {
	if !requiresStore {
		return nil
	}
	m.mu.RLock()
	ready := m.readyLocked()
	phase := m.phase
	m.mu.RUnlock()
	if ready {
		return nil
	}
	if m.cfg.Target == "" {
		return m.configError()
	}

	if m.cfg.DisableBuffering {
		if phase != PhaseConnecting {
			m.connectInBackground()
		}
		gateRejections.WithLabelValues("unbuffered").Inc()
		return ErrNotReady(errors.New("store is " + string(phase)))
	}

	if m.cfg.GateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.GateTimeout)
		defer cancel()
	}
	if _, err := m.Connect(ctx); err != nil {
		if IsConfiguration(err) {
			return err
		}
		gateRejections.WithLabelValues(rejectReason(err)).Inc()
		return ErrNotReady(err)
	}
	return nil
}

func (m *Manager) connectInBackground() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.bg.Add(1)
	m.mu.Unlock()
	go func() {
		defer m.bg.Done()
		_, _ = m.Connect(m.base)
	}()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "wait_timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrClosed):
		return "closed"
	}
	return "connect_failed"
}
