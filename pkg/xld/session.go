package xld

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the target environment and the authentication token shared
// by every call made through a Client.
//
// A token is either present or absent. It becomes present after a successful
// Authenticate and absent after ClearToken, a 401 response or an expired
// token error. Concurrent Authenticate and authenticated calls may observe a
// stale or just-cleared token.
type Session struct {
	mu          sync.RWMutex
	environment Environment
	token       string
}

var (
	defaultSession     *Session
	defaultSessionOnce sync.Once
)

// NewSession creates a session for the given environment with no token.
// An invalid environment falls back to development.
func NewSession(env Environment) *Session {
	if !env.Valid() {
		env = EnvDevelopment
	}
	return &Session{environment: env}
}

// DefaultSession returns the process-wide session, creating it on first use
// in the development environment. Every later call returns the same instance;
// it is never reconstructed.
func DefaultSession() *Session {
	defaultSessionOnce.Do(func() {
		defaultSession = NewSession(EnvDevelopment)
	})
	return defaultSession
}

// Environment returns the environment sent with every request
func (s *Session) Environment() Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.environment
}

// SetEnvironment changes the environment for subsequent requests.
func (s *Session) SetEnvironment(env Environment) error {
	parsed, err := ParseEnvironment(string(env))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.environment = parsed
	s.mu.Unlock()
	return nil
}

// Token returns the current token and whether one is set
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// HasToken reports whether a token is set
func (s *Session) HasToken() bool {
	_, ok := s.Token()
	return ok
}

// SetToken stores token. An empty token clears the session.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// ClearToken removes the current token
func (s *Session) ClearToken() {
	s.SetToken("")
}

// TokenExpiry returns the exp claim of the current token when it is a JWT.
// The signature is not verified; the token is only inspected.
func (s *Session) TokenExpiry() (time.Time, bool) {
	token, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenExpired reports whether the current token carries an exp claim at or
// before now. Opaque tokens are never considered expired.
func (s *Session) TokenExpired(now time.Time) bool {
	exp, ok := s.TokenExpiry()
	if !ok {
		return false
	}
	return !now.Before(exp)
}
