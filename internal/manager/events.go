package manager

// Event represents a connection lifecycle event.
// Minimal and stable: name + attempt number and optional fields.
type Event struct {
	Name    string
	Attempt uint64
	Fields  map[string]any
}

// Event names published by the manager.
const (
	EventConnectStart   = "connect_start"
	EventConnectReady   = "connect_ready"
	EventConnectFailed  = "connect_failed"
	EventRetryScheduled = "retry_scheduled"
	EventRetryFired     = "retry_fired"
	EventConfigError    = "config_error"
	EventClosed         = "closed"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
