package manager

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"authd/internal/store"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultDatabase               = "authdb"
	DefaultConnectTimeout         = 10 * time.Second
	DefaultSocketTimeout          = 45 * time.Second
	DefaultServerSelectionTimeout = 5 * time.Second
	DefaultMaxPoolSize            = 10
	DefaultAddressFamily          = 4
	DefaultRetryBackoff           = 3 * time.Second

	// maxTraceLen caps ConnectError.Trace.
	maxTraceLen = 512
)

// Config holds Manager configuration.
// Apart from Dialer, a zero value is valid; see constants for default values.
type Config struct {
	// Target is the connection string. Empty is a configuration error.
	Target   string
	Database string

	ConnectTimeout         time.Duration
	SocketTimeout          time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
	// AddressFamily is 4, 6, or -1 to let the OS choose. 0 means the default (4).
	AddressFamily int

	// DisableBuffering makes the gate fail fast instead of waiting for an
	// in-flight attempt.
	DisableBuffering bool
	// RetryBackoff is the fixed delay between a failed attempt and the next.
	RetryBackoff time.Duration
	// GateTimeout bounds how long Admit waits. Zero waits for the attempt,
	// which is itself bounded by ConnectTimeout.
	GateTimeout time.Duration

	Dialer    store.Dialer
	Clock     clockwork.Clock
	Logger    *zerolog.Logger
	Publisher EventPublisher
}

func (c Config) storeOptions() store.Options {
	fam := c.AddressFamily
	if fam < 0 {
		fam = 0
	}
	return store.Options{
		Database:               c.Database,
		ConnectTimeout:         c.ConnectTimeout,
		SocketTimeout:          c.SocketTimeout,
		ServerSelectionTimeout: c.ServerSelectionTimeout,
		MaxPoolSize:            c.MaxPoolSize,
		MinPoolSize:            c.MinPoolSize,
		AddressFamily:          fam,
	}
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.SocketTimeout <= 0 {
		c.SocketTimeout = DefaultSocketTimeout
	}
	if c.ServerSelectionTimeout <= 0 {
		c.ServerSelectionTimeout = DefaultServerSelectionTimeout
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
	if c.MinPoolSize > c.MaxPoolSize {
		c.MinPoolSize = c.MaxPoolSize
	}
	if c.AddressFamily == 0 {
		c.AddressFamily = DefaultAddressFamily
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.GateTimeout < 0 {
		c.GateTimeout = 0
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	return c
}
