package xld

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client is an XLD payments API client
type Client struct {
	http      *resty.Client
	baseURL   string
	session   *Session
	logger    zerolog.Logger
	metrics   *Metrics
	observer  Observer
	validate  *validator.Validate
	preflight bool
	now       func() time.Time

	httpClient *http.Client
}

// Option configures optional client behavior.
type Option func(*Client)

// WithSession makes the client read and update s instead of the process-wide
// DefaultSession.
func WithSession(s *Session) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records every call on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithObserver sends client events to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithExpiryPreflight rejects authenticated calls locally, without a network
// round trip, when the session token is a JWT whose exp has passed.
func WithExpiryPreflight(enabled bool) Option {
	return func(c *Client) {
		c.preflight = enabled
	}
}

// NewClient builds a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, &ConfigError{Field: "base URL", Reason: "base URL is required"}
	}

	c := &Client{
		baseURL:  trimmed,
		logger:   zerolog.Nop(),
		observer: nopObserver{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.session == nil {
		c.session = DefaultSession()
	}
	if c.httpClient != nil {
		c.http = resty.NewWithClient(c.httpClient)
	} else {
		c.http = resty.New()
	}
	c.http.SetBaseURL(c.baseURL)
	c.http.SetLogger(restyLogger{logger: c.logger})

	return c, nil
}

// Session returns the session the client reads its token and environment from
func (c *Client) Session() *Session {
	return c.session
}

// BaseURL returns the API root the client calls
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call holds the per-request inputs substituted into a route.
type call struct {
	pathParams map[string]string
	rawQuery   string
	body       any
}

// execute runs one request for rt and unwraps the envelope into T.
func execute[T any](ctx context.Context, c *Client, rt route, in call) (*T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, status, err := fetch[T](ctx, c, rt, in)
	if err != nil {
		c.fail(ctx, rt, err)
		return nil, err
	}
	c.observer.Observe(ctx, Event{Type: EventRequestSucceeded, Route: rt.name, StatusCode: status})
	return data, nil
}

// fetch returns the unwrapped data and the HTTP status of the response.
func fetch[T any](ctx context.Context, c *Client, rt route, in call) (*T, int, error) {
	resp, err := c.send(ctx, rt, in)
	if err != nil {
		return nil, 0, err
	}

	env, err := decodeEnvelope[T](resp.Body())
	if err != nil {
		return nil, resp.StatusCode(), err
	}

	data, err := env.unwrap(resp.StatusCode(), rt.failure)
	return data, resp.StatusCode(), err
}

// send builds headers and issues exactly one HTTP request.
func (c *Client) send(ctx context.Context, rt route, in call) (*resty.Response, error) {
	headers, err := c.headers(rt)
	if err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeaderMultiValues(headers)
	if len(in.pathParams) > 0 {
		req.SetPathParams(in.pathParams)
	}
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", rt.name, err)
		}
		req.SetBody(payload)
	}

	path := rt.path
	if in.rawQuery != "" {
		path += "?" + in.rawQuery
	}

	requestID := uuid.NewString()
	start := c.now()
	resp, err := req.Execute(rt.method, path)
	elapsed := c.now().Sub(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	c.metrics.observe(rt.name, status, elapsed)

	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Warn().Err(err)
	}
	event.
		Str("request_id", requestID).
		Str("route", rt.name).
		Str("method", rt.method).
		Int("status", status).
		Dur("duration", elapsed).
		Msg("xld request")

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) headers(rt route) (http.Header, error) {
	b := NewHeaderBuilder(c.session.Environment())
	if rt.auth {
		token, _ := c.session.Token()
		if c.preflight && token != "" && c.session.TokenExpired(c.now()) {
			return nil, NewAPIError("The incoming token has expired.", http.StatusUnauthorized)
		}
		b.WithAuth(token)
	}
	return b.Headers()
}

// fail runs the expiry detector where the route asks for it and reports the
// failure. err is never altered.
func (c *Client) fail(ctx context.Context, rt route, err error) {
	status := 0
	if apiErr, ok := AsAPIError(err); ok {
		status = apiErr.StatusCode
	}

	if rt.inspectsExpiry && CheckTokenExpired(c.session, err) {
		c.observer.Observe(ctx, Event{Type: EventSessionCleared, Route: rt.name, StatusCode: status, Err: err})
	}

	c.logger.Warn().
		Err(err).
		Str("route", rt.name).
		Int("status", status).
		Msg("xld request failed")
	c.observer.Observe(ctx, Event{Type: EventRequestFailed, Route: rt.name, StatusCode: status, Err: err})
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
