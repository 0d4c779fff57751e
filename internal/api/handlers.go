// Package api serves the sandbox implementation of the XLD payments API
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/xld/xld-go/internal/auth"
	"github.com/xld/xld-go/internal/wallet"
	"github.com/xld/xld-go/pkg/xld"
)

const copyright = "Copyright XLD Finance. Sandbox environment."

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Handler contains all HTTP handlers
type Handler struct {
	auth     *auth.Service
	ledger   *wallet.Service
	catalog  *Catalog
	logger   zerolog.Logger
	metrics  *httpMetrics
	gatherer prometheus.Gatherer
	validate *validator.Validate
}

// Option configures a Handler
type Option func(*Handler)

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithRegistry registers the sandbox metrics on reg and serves reg at /metrics
func WithRegistry(reg *prometheus.Registry) Option {
	return func(h *Handler) {
		if reg != nil {
			h.metrics = newHTTPMetrics(reg)
			h.gatherer = reg
		}
	}
}

// New creates a new API handler
func New(authSvc *auth.Service, ledger *wallet.Service, catalog *Catalog, opts ...Option) *Handler {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	h := &Handler{
		auth:     authSvc,
		ledger:   ledger,
		catalog:  catalog,
		logger:   zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		reg := prometheus.NewRegistry()
		h.metrics = newHTTPMetrics(reg)
		h.gatherer = reg
	}
	return h
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xld_sandbox_requests_total",
			Help: "Sandbox API requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xld_sandbox_request_duration_seconds",
			Help:    "Sandbox API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Response helpers

// envelope is the wrapper of every API response
type envelope struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Copyright string      `json:"copyright"`
}

func respondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Message:   message,
		Data:      data,
		Copyright: copyright,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, message, nil)
}

// decodeBody reads a JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	return nil
}

// === Health ===

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "OK", map[string]interface{}{
		"status":  "healthy",
		"service": "xld-sandbox",
	})
}

// === Authentication ===

// authResponse is the body of /authenticate, which is not enveloped
type authResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

func respondAuth(w http.ResponseWriter, status int, resp authResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Authenticate handles POST /authenticate
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var creds xld.Credentials
	if err := decodeBody(r, &creds); err != nil {
		respondAuth(w, http.StatusBadRequest, authResponse{Message: "Invalid request body."})
		return
	}
	if err := h.validate.Struct(creds); err != nil {
		respondAuth(w, http.StatusBadRequest, authResponse{Message: "Public and secret keys are required."})
		return
	}

	token, err := h.auth.Authenticate(creds.Public, creds.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondAuth(w, http.StatusUnauthorized, authResponse{Message: "Invalid API keys."})
			return
		}
		h.logger.Error().Err(err).Msg("failed to issue token")
		respondAuth(w, http.StatusInternalServerError, authResponse{Message: "Failed to authenticate."})
		return
	}

	respondAuth(w, http.StatusOK, authResponse{Token: token, Message: "Authenticated."})
}
