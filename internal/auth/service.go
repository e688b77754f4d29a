// Package auth implements password login against the user store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"authd/internal/store"
	"authd/pkg/types"
)

const (
	// DefaultToken is the placeholder token returned on success.
	DefaultToken = "dummy-token"

	loginOK = "Login successful"
)

// invalidCredentialsError is returned for both an unknown email and a wrong
// password so callers cannot tell the two apart.
type invalidCredentialsError struct{}

func (invalidCredentialsError) Error() string   { return "Invalid credentials" }
func (invalidCredentialsError) StatusCode() int { return http.StatusBadRequest }

// ErrInvalidCredentials is the single login failure error.
var ErrInvalidCredentials error = invalidCredentialsError{}

// IsInvalidCredentials reports whether err is ErrInvalidCredentials.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// Store is the connection manager surface used by the service.
type Store interface {
	Handle() (store.Handle, error)
	Admit(ctx context.Context, requiresStore bool) error
	Status() types.StoreStatus
	Ready() bool
}

// Config holds Service configuration. A zero value is valid.
type Config struct {
	// Token returned on successful login. Defaults to DefaultToken.
	Token  string
	Logger *zerolog.Logger
}

// Service verifies credentials. It's safe for concurrent use.
type Service struct {
	st    Store
	token string
	log   zerolog.Logger
}

// New creates a Service. It panics if st is nil.
func New(st Store, cfg Config) *Service {
	if st == nil {
		panic("auth: store must be provided")
	}
	if cfg.Token == "" {
		cfg.Token = DefaultToken
	}
	l := zerolog.Nop()
	if cfg.Logger != nil {
		l = cfg.Logger.With().Str("component", "auth").Logger()
	}
	return &Service{st: st, token: cfg.Token, log: l}
}

// Login checks email and password. Callers are expected to have passed the
// store gate; without a handle the store's not-ready error is returned.
func (s *Service) Login(ctx context.Context, req types.LoginRequest) (types.LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return types.LoginResponse{}, ErrInvalidCredentials
	}
	h, err := s.st.Handle()
	if err != nil {
		return types.LoginResponse{}, err
	}
	u, err := h.Users().FindByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		// Spend the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		s.log.Debug().Msg("login: unknown email")
		return types.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return types.LoginResponse{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := CheckPassword(u.Password, req.Password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Error().Err(err).Str("user_id", u.ID.Hex()).Msg("login: stored hash unusable")
		}
		return types.LoginResponse{}, ErrInvalidCredentials
	}
	return types.LoginResponse{Message: loginOK, Token: s.token}, nil
}

func (s *Service) Admit(ctx context.Context, requiresStore bool) error {
	return s.st.Admit(ctx, requiresStore)
}

func (s *Service) Status() types.StoreStatus { return s.st.Status() }

func (s *Service) Ready() bool { return s.st.Ready() }
