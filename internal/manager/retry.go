package manager

import "context"

// scheduleRetryLocked arms the single retry timer. m.mu must be held.
func (m *Manager) scheduleRetryLocked(attempt uint64) {
	if m.closed {
		return
	}
	m.stopRetryLocked()
	m.retryGen++
	gen := m.retryGen
	m.retry = m.clock.AfterFunc(m.cfg.RetryBackoff, func() { m.fireRetry(gen) })
	retriesScheduled.Inc()
	m.log.Info().Uint64("attempt", attempt).Dur("backoff", m.cfg.RetryBackoff).Msg("event=retry_scheduled")
	m.publish(EventRetryScheduled, attempt, map[string]any{"backoff_ms": m.cfg.RetryBackoff.Milliseconds()})
}

// stopRetryLocked cancels the pending retry, if any. m.mu must be held.
// Bumping the generation also neutralises a timer that already fired but
// has not yet taken the lock.
func (m *Manager) stopRetryLocked() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	m.retryGen++
}

func (m *Manager) fireRetry(gen uint64) {
	m.mu.Lock()
	if gen != m.retryGen || m.closed {
		m.mu.Unlock()
		return
	}
	m.retry = nil
	m.bg.Add(1)
	m.mu.Unlock()
	defer m.bg.Done()

	m.publish(EventRetryFired, 0, nil)
	if _, err := m.Connect(context.Background()); err != nil {
		m.log.Debug().Err(err).Msg("retry did not succeed")
	}
}

// retryPending reports whether a retry timer is armed.
func (m *Manager) retryPending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.retry != nil
}
