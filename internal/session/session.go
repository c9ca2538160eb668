// Package session persists the bearer token between CLI runs and holds the
// current user.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"marketplace/internal/client"
)

// TokenFile is the fixed key the token is stored under inside the session
// directory.
const TokenFile = "token"

var ErrNoToken = errors.New("not logged in")

// Store is safe for concurrent use. State changes only through its methods.
type Store struct {
	dir string
	now func() time.Time

	mu    sync.RWMutex
	token string
	user  *client.User
}

// Open loads the token saved in dir, if any.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir, now: time.Now}

	data, err := os.ReadFile(s.path())
	switch {
	case err == nil:
		s.token = strings.TrimSpace(string(data))
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read session: %w", err)
	}
	return s, nil
}

func (s *Store) path() string { return filepath.Join(s.dir, TokenFile) }

// Token implements client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the token in memory and on disk.
func (s *Store) SetToken(token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear logs out: the token file is removed and the user forgotten.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) User() *client.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) SetUser(u *client.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// ExpiresAt decodes the token's exp claim without verifying the signature.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether there is no usable token. A token without exp
// never expires locally; an undecodable one is treated as expired. The
// server stays authoritative either way.
func (s *Store) Expired() bool {
	token := s.Token()
	if token == "" {
		return true
	}
	exp, ok := s.ExpiresAt()
	if !ok {
		return !hasNoExp(token)
	}
	return !s.now().Before(exp)
}

// Authenticated is the local check used before protected calls.
func (s *Store) Authenticated() bool {
	return !s.Expired()
}

func hasNoExp(token string) bool {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	_, ok := claims["exp"]
	return !ok
}
