// Package memstore is an in-process implementation of the store contracts.
// It backs the e2e tests and the `memory://` connection target.
package memstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"authd/internal/store"
)

// Scheme is the target prefix that selects this store.
const Scheme = "memory://"

// IsTarget reports whether target selects the in-memory store.
func IsTarget(target string) bool { return strings.HasPrefix(target, Scheme) }

var errClosed = errors.New("memstore: handle closed")

// Store holds users keyed by normalized email.
type Store struct {
	mu    sync.RWMutex
	users map[string]store.User
}

func New() *Store { return &Store{users: make(map[string]store.User)} }

// Dialer hands out handles over a shared Store. Dials can be held or made to
// fail to simulate an unreachable database.
type Dialer struct {
	store *Store

	mu       sync.Mutex
	dials    int
	failures []error
	hold     chan struct{}
	handles  []*Handle
}

func NewDialer(s *Store) *Dialer {
	if s == nil {
		s = New()
	}
	return &Dialer{store: s}
}

// Store returns the backing store.
func (d *Dialer) Store() *Store { return d.store }

// FailNext queues errors returned by the next dials, one per dial.
func (d *Dialer) FailNext(errs ...error) {
	d.mu.Lock()
	d.failures = append(d.failures, errs...)
	d.mu.Unlock()
}

// Hold blocks subsequent dials until the returned release func is called.
func (d *Dialer) Hold() (release func()) {
	ch := make(chan struct{})
	d.mu.Lock()
	d.hold = ch
	d.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			if d.hold == ch {
				d.hold = nil
			}
			d.mu.Unlock()
			close(ch)
		})
	}
}

// Dials reports how many Dial calls were made.
func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// Handles returns every handle handed out so far.
func (d *Dialer) Handles() []*Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Handle(nil), d.handles...)
}

func (d *Dialer) Dial(ctx context.Context, target string, opts store.Options) (store.Handle, error) {
	d.mu.Lock()
	d.dials++
	hold := d.hold
	var fail error
	if len(d.failures) > 0 {
		fail = d.failures[0]
		d.failures = d.failures[1:]
	}
	d.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, &store.Error{Msg: "connect timed out", Code: store.CodeTimeout, Err: ctx.Err()}
		}
	}
	if fail != nil {
		return nil, fail
	}
	h := &Handle{store: d.store}
	h.healthy.Store(true)
	d.mu.Lock()
	d.handles = append(d.handles, h)
	d.mu.Unlock()
	return h, nil
}

// Handle is a connection to a Store.
type Handle struct {
	store   *Store
	healthy atomic.Bool
	closed  atomic.Bool
}

func (h *Handle) Healthy() bool { return h.healthy.Load() && !h.closed.Load() }

// SetHealthy flips the health flag, simulating a lost server.
func (h *Handle) SetHealthy(ok bool) { h.healthy.Store(ok) }

// Closed reports whether Close was called.
func (h *Handle) Closed() bool { return h.closed.Load() }

func (h *Handle) Users() store.UserStore { return users{h: h} }

func (h *Handle) Close(ctx context.Context) error {
	h.closed.Store(true)
	return nil
}

type users struct{ h *Handle }

func (u users) FindByEmail(ctx context.Context, email string) (*store.User, error) {
	if u.h.closed.Load() {
		return nil, errClosed
	}
	s := u.h.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[store.NormalizeEmail(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &rec, nil
}

func (u users) Insert(ctx context.Context, rec *store.User) error {
	if u.h.closed.Load() {
		return errClosed
	}
	return u.h.store.insert(rec)
}

func (u users) EnsureIndexes(ctx context.Context) error {
	if u.h.closed.Load() {
		return errClosed
	}
	return nil
}

func (s *Store) insert(rec *store.User) error {
	email := store.NormalizeEmail(rec.Email)
	if email == "" {
		return errors.New("memstore: email is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.users[email]; dup {
		return store.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.Email = email
	rec.CreatedAt, rec.UpdatedAt = now, now
	s.users[email] = *rec
	return nil
}

// Put inserts a user directly, bypassing any handle.
func (s *Store) Put(rec *store.User) error { return s.insert(rec) }

// Len returns the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
