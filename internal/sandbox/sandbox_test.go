package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xld/xld-go/internal/auth"
	"github.com/xld/xld-go/internal/config"
	"github.com/xld/xld-go/pkg/xld"
	"golang.org/x/crypto/bcrypt"
)

var testMerchant = xld.Credentials{Public: "pk_sandbox", Secret: "sk_sandbox"}

func testConfig() Config {
	return Config{
		Addr:      "127.0.0.1:0",
		JWTSecret: "sandbox-test-secret",
		TokenTTL:  time.Hour,
		HashCost:  bcrypt.MinCost,
		Merchants: []xld.Credentials{testMerchant},
	}
}

func authenticate(t *testing.T, h http.Handler, creds xld.Credentials) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(creds)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/authenticate", bytes.NewReader(body))
	req.Header.Set("environment", "development")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RegistersMerchants(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	rec := authenticate(t, s.Handler(), testMerchant)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = authenticate(t, s.Handler(), xld.Credentials{Public: "pk_other", Secret: "sk_other"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, s.Register(xld.Credentials{Public: "pk_other", Secret: "sk_other"}))
	rec = authenticate(t, s.Handler(), xld.Credentials{Public: "pk_other", Secret: "sk_other"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_InvalidConfig(t *testing.T) {
	noSecret := testConfig()
	noSecret.JWTSecret = ""
	_, err := New(noSecret)
	var cfgErr *xld.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Sandbox.JWTSecret", cfgErr.Field)

	noTTL := testConfig()
	noTTL.TokenTTL = 0
	_, err = New(noTTL)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Sandbox.TokenTTL", cfgErr.Field)

	duplicate := testConfig()
	duplicate.Merchants = append(duplicate.Merchants, testMerchant)
	_, err = New(duplicate)
	assert.ErrorIs(t, err, auth.ErrMerchantExists)
}

func TestWithClock_ExpiresTokens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := New(testConfig(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	rec := authenticate(t, s.Handler(), testMerchant)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	now = now.Add(2 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/transactions/wallet/0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", nil)
	req.Header.Set("environment", "development")
	req.Header.Set("Authorization", resp.Token)
	got := httptest.NewRecorder()
	s.Handler().ServeHTTP(got, req)

	assert.Equal(t, http.StatusUnauthorized, got.Code)
	assert.Contains(t, got.Body.String(), "The incoming token has expired")
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Credentials: config.CredentialsConfig{PublicKey: "pk", SecretKey: "sk"},
		Sandbox:     config.SandboxConfig{Addr: ":9090", JWTSecret: "s", TokenTTL: time.Minute},
	}

	got := FromConfig(cfg)

	assert.Equal(t, ":9090", got.Addr)
	assert.Equal(t, "s", got.JWTSecret)
	assert.Equal(t, time.Minute, got.TokenTTL)
	assert.Equal(t, []xld.Credentials{{Public: "pk", Secret: "sk"}}, got.Merchants)

	cfg.Credentials = config.CredentialsConfig{}
	assert.Empty(t, FromConfig(cfg).Merchants)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "256.0.0.1:bad"
	s, err := New(cfg)
	require.NoError(t, err)

	err = s.ListenAndServe(context.Background())
	assert.Error(t, err)
}
