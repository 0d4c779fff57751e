// Package sandbox assembles the in-memory XLD API server used for local
// development and integration tests.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/xld/xld-go/internal/api"
	"github.com/xld/xld-go/internal/audit"
	"github.com/xld/xld-go/internal/auth"
	"github.com/xld/xld-go/internal/config"
	"github.com/xld/xld-go/internal/wallet"
	"github.com/xld/xld-go/pkg/xld"
)

const shutdownTimeout = 10 * time.Second

// Config holds sandbox settings
type Config struct {
	Addr      string
	JWTSecret string
	TokenTTL  time.Duration
	// HashCost is the bcrypt cost of merchant secrets; zero means the default
	HashCost int
	// Merchants are the key pairs accepted by /authenticate
	Merchants []xld.Credentials
}

// FromConfig builds a sandbox Config from the process configuration. The
// configured key pair, if any, is registered as the only merchant.
func FromConfig(cfg *config.Config) Config {
	c := Config{
		Addr:      cfg.Sandbox.Addr,
		JWTSecret: cfg.Sandbox.JWTSecret,
		TokenTTL:  cfg.Sandbox.TokenTTL,
	}
	if cfg.Credentials.HasCredentials() {
		c.Merchants = append(c.Merchants, cfg.Credentials.Credentials())
	}
	return c
}

// Server is a configured sandbox
type Server struct {
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time
	reg     *prometheus.Registry
	catalog *api.Catalog

	auth    *auth.Service
	ledger  *wallet.Service
	audit   *audit.Service
	handler http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for tokens
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithRegistry registers the server metrics on reg
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.reg = reg
	}
}

// WithCatalog replaces the built-in reference data
func WithCatalog(c *api.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// New wires the sandbox services and registers cfg.Merchants
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, &xld.ConfigError{Field: "Sandbox.JWTSecret", Reason: "secret is required"}
	}
	if cfg.TokenTTL <= 0 {
		return nil, &xld.ConfigError{Field: "Sandbox.TokenTTL", Value: cfg.TokenTTL.String(), Reason: "must be positive"}
	}

	s := &Server{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reg == nil {
		s.reg = prometheus.NewRegistry()
	}

	var authOpts []auth.Option
	if s.now != nil {
		authOpts = append(authOpts, auth.WithClock(s.now))
	}
	s.auth = auth.New(auth.Config{
		JWTSecret:   cfg.JWTSecret,
		TokenExpiry: cfg.TokenTTL,
		HashCost:    cfg.HashCost,
	}, authOpts...)

	for _, m := range cfg.Merchants {
		if _, err := s.auth.Register(m.Public, m.Secret); err != nil {
			return nil, fmt.Errorf("registering merchant %s: %w", m.Public, err)
		}
	}

	s.audit = audit.New(s.logger)
	s.ledger = wallet.New(s.audit, wallet.WithLogger(s.logger))
	h := api.New(s.auth, s.ledger, s.catalog,
		api.WithLogger(s.logger),
		api.WithRegistry(s.reg),
	)
	s.handler = h.SetupRouter()

	s.logger.Info().
		Int("merchants", len(cfg.Merchants)).
		Dur("token_ttl", cfg.TokenTTL).
		Msg("sandbox initialized")
	return s, nil
}

// Handler returns the sandbox router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Audit returns the audit trail of ledger events
func (s *Server) Audit() *audit.Service {
	return s.audit
}

// Ledger returns the transaction ledger
func (s *Server) Ledger() *wallet.Service {
	return s.ledger
}

// Register adds a merchant key pair after construction
func (s *Server) Register(creds xld.Credentials) error {
	_, err := s.auth.Register(creds.Public, creds.Secret)
	return err
}

// ListenAndServe listens on cfg.Addr and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("sandbox listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down sandbox")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
