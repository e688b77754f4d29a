package manager

import (
	"time"

	"authd/internal/store"
)

// Phase is the lifecycle state of the store connection.
type Phase string

const (
	PhaseDisconnected Phase = "disconnected"
	PhaseConnecting   Phase = "connecting"
	PhaseConnected    Phase = "connected"
	PhaseFailed       Phase = "failed"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	Phase        Phase
	Handle       store.Handle
	LastError    *ConnectError
	LastAttempt  time.Time
	RetryPending bool
	Attempts     uint64
}
