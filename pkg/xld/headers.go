package xld

import "net/http"

const (
	headerContentType   = "Content-Type"
	headerEnvironment   = "environment"
	headerAuthorization = "Authorization"

	contentTypeJSON = "application/json"
)

// HeaderBuilder assembles the headers of a single request.
// The first failing With* call is remembered and returned by Headers.
type HeaderBuilder struct {
	headers http.Header
	err     error
}

// NewHeaderBuilder seeds the JSON content type and the environment tag
func NewHeaderBuilder(env Environment) *HeaderBuilder {
	h := http.Header{}
	h.Set(headerContentType, contentTypeJSON)
	h.Set(headerEnvironment, string(env))
	return &HeaderBuilder{headers: h}
}

// WithAuth sets the Authorization header to the raw token.
func (b *HeaderBuilder) WithAuth(token string) *HeaderBuilder {
	if b.err != nil {
		return b
	}
	if token == "" {
		b.err = NewAPIError("Failed to get authentication token, please authenticate first.", http.StatusUnauthorized)
		return b
	}
	b.headers.Set(headerAuthorization, token)
	return b
}

// WithEnvironment overrides the environment header
func (b *HeaderBuilder) WithEnvironment(env Environment) *HeaderBuilder {
	if b.err != nil {
		return b
	}
	if env == "" {
		b.err = NewAPIError("environment header is required.", http.StatusBadRequest)
		return b
	}
	b.headers.Set(headerEnvironment, string(env))
	return b
}

// Headers returns the assembled headers or the first recorded error.
func (b *HeaderBuilder) Headers() (http.Header, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.headers.Clone(), nil
}
