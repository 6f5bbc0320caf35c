// Package auth implements the single-account login gate in front of the app.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultUsername and defaultPassword form the built-in clinic account.
const (
	DefaultUsername = "Doctor"
	defaultPassword = "slp123"
)

// ErrInvalidCredentials is returned for any failed login. It does not say
// which half was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid username or password")

var (
	defaultHashOnce sync.Once
	defaultHash     string
	defaultHashErr  error
)

// Gate checks a username and password against one account.
type Gate struct {
	Username     string
	PasswordHash string // bcrypt
}

// NewGate returns a gate for username and hash. An empty username uses
// DefaultUsername; an empty hash uses the built-in clinic password.
func NewGate(username, passwordHash string) (*Gate, error) {
	if username == "" {
		username = DefaultUsername
	}
	if passwordHash == "" {
		defaultHashOnce.Do(func() {
			var b []byte
			b, defaultHashErr = bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
			defaultHash = string(b)
		})
		if defaultHashErr != nil {
			return nil, fmt.Errorf("hash default password: %w", defaultHashErr)
		}
		passwordHash = defaultHash
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("auth: password hash is not bcrypt: %w", err)
	}
	return &Gate{Username: username, PasswordHash: passwordHash}, nil
}

// Check returns nil when the credentials match. The username ignores
// surrounding space.
func (g *Gate) Check(username, password string) error {
	if strings.TrimSpace(username) != g.Username {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for SPEECHPATH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("auth: empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
