package types

import "time"

// StoreError is the client-visible view of the last connection failure.
type StoreError struct {
	// Human readable failure message.
	// example: server selection error: context deadline exceeded
	Message string `json:"message" example:"server selection error: context deadline exceeded"`
	// Driver or taxonomy code for the failure.
	// example: connect_timeout
	Code string `json:"code" example:"connect_timeout"`
	// Truncated diagnostic trace (cause chain).
	Trace string `json:"trace,omitempty"`
}

// StoreStatus is a read-only projection of the connection manager state.
type StoreStatus struct {
	// Lifecycle phase: disconnected, connecting, connected, failed.
	// example: connected
	Phase string `json:"phase" example:"connected"`
	// Last connection error, cleared on success.
	LastError *StoreError `json:"last_error,omitempty"`
	// Start time of the most recent connect attempt. Zero if none yet.
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	// Whether a connection target was configured.
	// example: true
	HasConfiguredTarget bool `json:"has_configured_target" example:"true"`
	// Whether a background retry is currently scheduled.
	// example: false
	RetryPending bool `json:"retry_pending" example:"false"`
	// Number of connect attempts issued since start.
	// example: 1
	Attempts uint64 `json:"attempts" example:"1"`
}
