package xld

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_Success(t *testing.T) {
	srv := newStubServer(t, http.StatusOK, `{"token":"T","message":"Authenticated"}`)
	events := &recorder{}
	c := newTestClient(t, srv.URL, WithObserver(events))

	token, err := c.Authenticate(context.Background(), Credentials{Public: "pk_test", Secret: "sk_test"})

	require.NoError(t, err)
	assert.Equal(t, "T", token)
	got, ok := c.Session().Token()
	assert.True(t, ok)
	assert.Equal(t, "T", got)

	req := srv.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/authenticate", req.Path)
	assert.Empty(t, req.Header.Get("Authorization"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, map[string]string{"public": "pk_test", "secret": "sk_test"}, body)

	assert.Equal(t, []EventType{EventAuthenticated}, events.types())
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
	}{
		{name: "both empty", creds: Credentials{}},
		{name: "public empty", creds: Credentials{Secret: "sk"}},
		{name: "secret empty", creds: Credentials{Public: "pk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newStubServer(t, http.StatusOK, `{"token":"T"}`)
			c := newTestClient(t, srv.URL)
			c.Session().SetToken("old")

			_, err := c.Authenticate(context.Background(), tt.creds)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.False(t, c.Session().HasToken(), "a failed authenticate leaves no token")
			assert.Empty(t, srv.calls())
		})
	}
}

func TestAuthenticate_Rejected(t *testing.T) {
	srv := newStubServer(t, http.StatusUnauthorized, `{"message":"Invalid API keys"}`)
	events := &recorder{}
	c := newTestClient(t, srv.URL, WithObserver(events))
	c.Session().SetToken("old")

	_, err := c.Authenticate(context.Background(), Credentials{Public: "pk", Secret: "wrong"})

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API keys", apiErr.Message)
	assert.False(t, c.Session().HasToken())
	assert.Contains(t, events.types(), EventSessionCleared)
	assert.Contains(t, events.types(), EventRequestFailed)
}

func TestAuthenticate_FailureWithoutTokenClearsNothing(t *testing.T) {
	srv := newStubServer(t, http.StatusUnauthorized, `{"message":"Invalid API keys"}`)
	events := &recorder{}
	c := newTestClient(t, srv.URL, WithObserver(events))

	_, err := c.Authenticate(context.Background(), Credentials{Public: "pk", Secret: "wrong"})
	require.Error(t, err)

	assert.NotContains(t, events.types(), EventSessionCleared)
	assert.Contains(t, events.types(), EventRequestFailed)
}

func TestAuthenticate_ReportsResponseStatus(t *testing.T) {
	srv := newStubServer(t, http.StatusCreated, `{"token":"T"}`)
	events := &recorder{}
	c := newTestClient(t, srv.URL, WithObserver(events))

	_, err := c.Authenticate(context.Background(), Credentials{Public: "pk", Secret: "sk"})
	require.NoError(t, err)

	require.Len(t, events.events, 1)
	assert.Equal(t, http.StatusCreated, events.events[0].StatusCode)
}

func TestAuthenticate_DefaultMessage(t *testing.T) {
	srv := newStubServer(t, http.StatusInternalServerError, `{}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Authenticate(context.Background(), Credentials{Public: "pk", Secret: "sk"})

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to authenticate.", apiErr.Message)
}

func TestAuthenticate_MissingTokenIsFailure(t *testing.T) {
	srv := newStubServer(t, http.StatusOK, `{"message":"ok"}`)
	c := newTestClient(t, srv.URL)

	_, err := c.Authenticate(context.Background(), Credentials{Public: "pk", Secret: "sk"})

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "ok", apiErr.Message)
	assert.False(t, c.Session().HasToken())
}

func TestAuthenticate_TokenUsedByLaterCalls(t *testing.T) {
	authSrv := newStubServer(t, http.StatusOK, `{"token":"fresh"}`)
	session := NewSession(EnvProduction)
	authClient := newTestClient(t, authSrv.URL, WithSession(session))

	_, err := authClient.Authenticate(context.Background(), Credentials{Public: "pk", Secret: "sk"})
	require.NoError(t, err)

	apiSrv := newStubServer(t, http.StatusOK, envelope(statusJSON))
	apiClient := newTestClient(t, apiSrv.URL, WithSession(session))
	_, err = apiClient.GetTransactionStatus(context.Background(), "0xabc", 1001)
	require.NoError(t, err)

	req := apiSrv.last(t)
	assert.Equal(t, "fresh", req.Header.Get("Authorization"))
	assert.Equal(t, "production", req.Header.Get("environment"))
}

func TestLogout(t *testing.T) {
	events := &recorder{}
	c := newTestClient(t, "http://127.0.0.1:1", WithObserver(events))
	c.Session().SetToken("T")

	c.Logout(context.Background())
	c.Logout(context.Background())

	assert.False(t, c.Session().HasToken())
	assert.Equal(t, []EventType{EventSessionCleared}, events.types())
}
