package xld

import (
	"context"
	"encoding/json"
	"net/http"
)

// Authenticate exchanges the API key pair for a session token.
//
// On success the token is stored in the client's session and returned. On
// any failure, including missing credentials, the session token is cleared
// before the error is returned.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	token, status, err := c.authenticate(ctx, creds)
	if err != nil {
		hadToken := c.session.HasToken()
		c.session.ClearToken()
		c.fail(ctx, routeAuthenticate, err)
		if hadToken {
			c.observer.Observe(ctx, Event{Type: EventSessionCleared, Route: routeAuthenticate.name, Err: err})
		}
		return "", err
	}

	c.session.SetToken(token)
	c.observer.Observe(ctx, Event{Type: EventAuthenticated, Route: routeAuthenticate.name, StatusCode: status})
	return token, nil
}

func (c *Client) authenticate(ctx context.Context, creds Credentials) (string, int, error) {
	if err := c.validate.Struct(creds); err != nil {
		return "", 0, NewAPIError("Authentication credentials are required.", http.StatusBadRequest)
	}

	resp, err := c.send(ctx, routeAuthenticate, call{body: creds})
	if err != nil {
		return "", 0, err
	}

	var result authResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", resp.StatusCode(), err
	}

	if !isSuccess(resp.StatusCode()) || result.Token == "" {
		return "", resp.StatusCode(), NewAPIError(messageOr(result.Message, routeAuthenticate.failure), resp.StatusCode())
	}

	return result.Token, resp.StatusCode(), nil
}

// Logout forgets the session token. No request is made.
func (c *Client) Logout(ctx context.Context) {
	if !c.session.HasToken() {
		return
	}
	c.session.ClearToken()
	c.observer.Observe(ctx, Event{Type: EventSessionCleared, Route: "logout"})
}
