package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"authd/internal/store"
)

// DefaultCost is the bcrypt cost used for new hashes.
const DefaultCost = bcrypt.DefaultCost

// dummyHash is compared against when the email is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), DefaultCost)

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// SeedUser hashes password and inserts a user. An existing email yields
// store.ErrDuplicateEmail.
func SeedUser(ctx context.Context, users store.UserStore, email, password string, cost int) (*store.User, error) {
	if store.NormalizeEmail(email) == "" || password == "" {
		return nil, errors.New("seed: email and password are required")
	}
	hash, err := HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	u := &store.User{Email: email, Password: hash}
	if err := users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
