// Package store defines the contract between the connection manager and the
// document database. Concrete drivers live in subpackages: mongostore for
// MongoDB and memstore for an in-process store used by tests and local runs.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUserNotFound is returned by UserStore lookups that match nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when inserting an email that already exists.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Options configures a single dial.
type Options struct {
	Database       string
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
	// ServerSelectionTimeout bounds the initial reachability probe.
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
	// AddressFamily restricts dialing to IPv4 (4) or IPv6 (6). 0 lets the OS choose.
	AddressFamily int
}

// Dialer opens a connection to the store.
type Dialer interface {
	Dial(ctx context.Context, target string, opts Options) (Handle, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, target string, opts Options) (Handle, error)

func (f DialerFunc) Dial(ctx context.Context, target string, opts Options) (Handle, error) {
	return f(ctx, target, opts)
}

// Handle is a live connection. Healthy must not perform I/O.
type Handle interface {
	Healthy() bool
	Users() UserStore
	Close(ctx context.Context) error
}

// UserStore persists user records.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, u *User) error
	// EnsureIndexes creates the unique email index if missing.
	EnsureIndexes(ctx context.Context) error
}

// User is a stored account. Password holds a bcrypt hash, never plaintext.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// NormalizeEmail lowercases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Error is a driver failure carrying a stable code.
type Error struct {
	Msg    string
	Code   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Msg + ": " + e.Reason
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Codes used by Error.Code.
const (
	CodeTimeout     = "connect_timeout"
	CodeUnreachable = "connect_error"
	CodeAuth        = "auth_failed"
	CodeBadTarget   = "invalid_target"
)
