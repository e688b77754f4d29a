package manager

import (
	"authd/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Phase:        m.phase,
		Handle:       m.handle,
		LastError:    m.lastErr,
		LastAttempt:  m.lastAttempt,
		RetryPending: m.retry != nil,
		Attempts:     m.attempts,
	}
}

// Status builds the client-visible status. It never blocks on I/O and never
// triggers a connect.
func (m *Manager) Status() types.StoreStatus {
	s := m.Snapshot()
	resp := types.StoreStatus{
		Phase:               string(s.Phase),
		LastAttempt:         s.LastAttempt,
		HasConfiguredTarget: m.cfg.Target != "",
		RetryPending:        s.RetryPending,
		Attempts:            s.Attempts,
	}
	if s.LastError != nil {
		resp.LastError = &types.StoreError{
			Message: s.LastError.Message,
			Code:    s.LastError.Code,
			Trace:   s.LastError.Trace,
		}
	}
	return resp
}
