package xld

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "merchant-1",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestNewSession_DefaultsInvalidEnvironment(t *testing.T) {
	s := NewSession("staging")
	assert.Equal(t, EnvDevelopment, s.Environment())
	assert.False(t, s.HasToken())
}

func TestSession_SetEnvironment(t *testing.T) {
	s := NewSession(EnvDevelopment)

	err := s.SetEnvironment("staging")
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
	assert.Equal(t, "environment", cfgErr.Field)
	assert.Equal(t, EnvDevelopment, s.Environment())

	require.Error(t, s.SetEnvironment(""))

	require.NoError(t, s.SetEnvironment(EnvProduction))
	assert.Equal(t, EnvProduction, s.Environment())
}

func TestSession_TokenLifecycle(t *testing.T) {
	s := NewSession(EnvDevelopment)

	_, ok := s.Token()
	assert.False(t, ok)

	s.SetToken("T")
	token, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "T", token)

	s.ClearToken()
	assert.False(t, s.HasToken())
}

func TestDefaultSession_SingleInstance(t *testing.T) {
	a := DefaultSession()
	b := DefaultSession()
	assert.Same(t, a, b)
}

func TestSession_TokenExpiry(t *testing.T) {
	now := time.Now()
	s := NewSession(EnvDevelopment)

	_, ok := s.TokenExpiry()
	assert.False(t, ok, "no token means no expiry")

	s.SetToken("opaque-token")
	_, ok = s.TokenExpiry()
	assert.False(t, ok)
	assert.False(t, s.TokenExpired(now), "opaque tokens never expire locally")

	s.SetToken(signedToken(t, now.Add(time.Hour)))
	exp, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Hour).Unix(), exp.Unix())
	assert.False(t, s.TokenExpired(now))

	// Parsing skips validation, so an already expired token still yields its exp.
	s.SetToken(signedToken(t, now.Add(-time.Minute)))
	assert.True(t, s.TokenExpired(now))
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := NewSession(EnvDevelopment)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetToken("tok")
			_ = s.SetEnvironment(EnvProduction)
		}()
		go func() {
			defer wg.Done()
			s.Token()
			s.ClearToken()
			_ = s.Environment()
		}()
	}
	wg.Wait()

	assert.Equal(t, EnvProduction, s.Environment())
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{in: "development", want: EnvDevelopment},
		{in: "production", want: EnvProduction},
		{in: "Production", wantErr: true},
		{in: "staging", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseEnvironment(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
