// Package config loads the XLD tooling configuration from the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/xld/xld-go/pkg/xld"
)

// Environment variable names
const (
	EnvEnvironment     = "XLD_ENVIRONMENT"
	EnvBaseURL         = "XLD_BASE_URL"
	EnvHTTPTimeout     = "XLD_HTTP_TIMEOUT"
	EnvExpiryPreflight = "XLD_EXPIRY_PREFLIGHT"
	EnvPublicKey       = "XLD_PUBLIC_KEY"
	EnvSecretKey       = "XLD_SECRET_KEY"
	EnvLogLevel        = "XLD_LOG_LEVEL"
	EnvLogFormat       = "XLD_LOG_FORMAT"
	EnvSandboxAddr     = "XLD_SANDBOX_ADDR"
	EnvSandboxSecret   = "XLD_SANDBOX_JWT_SECRET"
	EnvSandboxTokenTTL = "XLD_SANDBOX_TOKEN_TTL"
)

// Config holds all configuration for the SDK tooling
type Config struct {
	API         APIConfig
	Credentials CredentialsConfig
	Log         LogConfig
	Sandbox     SandboxConfig
}

// APIConfig selects the API and how it is called
type APIConfig struct {
	Environment     string        `envconfig:"XLD_ENVIRONMENT" default:"development" validate:"oneof=development production"`
	BaseURL         string        `envconfig:"XLD_BASE_URL" validate:"omitempty,url"`
	HTTPTimeout     time.Duration `envconfig:"XLD_HTTP_TIMEOUT" default:"0s"`
	ExpiryPreflight bool          `envconfig:"XLD_EXPIRY_PREFLIGHT" default:"false"`
}

// CredentialsConfig holds the API key pair
type CredentialsConfig struct {
	PublicKey string `envconfig:"XLD_PUBLIC_KEY"`
	SecretKey string `envconfig:"XLD_SECRET_KEY"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `envconfig:"XLD_LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `envconfig:"XLD_LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

// SandboxConfig holds the local sandbox server configuration
type SandboxConfig struct {
	Addr      string        `envconfig:"XLD_SANDBOX_ADDR" default:":8080" validate:"required"`
	JWTSecret string        `envconfig:"XLD_SANDBOX_JWT_SECRET" default:"xld-sandbox-secret-change-me"`
	TokenTTL  time.Duration `envconfig:"XLD_SANDBOX_TOKEN_TTL" default:"1h"`
}

// Load reads the given env files, or .env when none are named and it exists,
// then parses and validates the environment. Variables already set in the
// process environment win over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value constraints that envconfig cannot express
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &xld.ConfigError{
				Field:  fe.Namespace(),
				Value:  fmt.Sprint(fe.Value()),
				Reason: fmt.Sprintf("failed %q validation", fe.Tag()),
			}
		}
		return fmt.Errorf("validating config: %w", err)
	}
	if c.API.HTTPTimeout < 0 {
		return &xld.ConfigError{Field: EnvHTTPTimeout, Value: c.API.HTTPTimeout.String(), Reason: "must not be negative"}
	}
	if c.Sandbox.TokenTTL <= 0 {
		return &xld.ConfigError{Field: EnvSandboxTokenTTL, Value: c.Sandbox.TokenTTL.String(), Reason: "must be positive"}
	}
	return nil
}

// Env returns the configured API environment
func (a APIConfig) Env() xld.Environment {
	return xld.Environment(a.Environment)
}

// Credentials returns the key pair in the SDK's form
func (c CredentialsConfig) Credentials() xld.Credentials {
	return xld.Credentials{Public: c.PublicKey, Secret: c.SecretKey}
}

// HasCredentials reports whether both keys are set
func (c CredentialsConfig) HasCredentials() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}
