package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/xld/xld-go/internal/audit"
	"github.com/xld/xld-go/internal/config"
	"github.com/xld/xld-go/internal/logger"
	"github.com/xld/xld-go/pkg/xld"
)

// app holds the state shared by the commands of one invocation
type app struct {
	out    io.Writer
	errOut io.Writer
	flags  RootFlags

	cfg      *config.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	client   *xld.Client
}

// loadConfig loads the configuration once, applying flag overrides
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var files []string
	if a.flags.EnvFile != "" {
		files = append(files, a.flags.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if a.flags.Env != "" {
		cfg.API.Environment = a.flags.Env
	}
	if a.flags.BaseURL != "" {
		cfg.API.BaseURL = a.flags.BaseURL
	}

	a.cfg = cfg
	a.logger = logger.New(logger.Options{
		ServiceName: "xld-cli",
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		Output:      a.errOut,
	})
	return cfg, nil
}

// newClient returns the API client, creating it on first use
func (a *app) newClient() (*xld.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.API.BaseURL == "" {
		return nil, &xld.ConfigError{Field: config.EnvBaseURL, Reason: "base URL is required, set it or pass --base-url"}
	}

	a.registry = prometheus.NewRegistry()
	client, err := xld.NewClient(cfg.API.BaseURL,
		xld.WithSession(xld.NewSession(cfg.API.Env())),
		xld.WithHTTPClient(&http.Client{Timeout: cfg.API.HTTPTimeout}),
		xld.WithLogger(a.logger),
		xld.WithMetrics(xld.NewMetrics(a.registry)),
		xld.WithObserver(audit.New(a.logger).Observer()),
		xld.WithExpiryPreflight(cfg.API.ExpiryPreflight),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// authedClient returns a client holding a fresh session token
func (a *app) authedClient(ctx context.Context) (*xld.Client, error) {
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	if client.Session().HasToken() {
		return client, nil
	}
	if !a.cfg.Credentials.HasCredentials() {
		return nil, fmt.Errorf("%s and %s are required for this command", config.EnvPublicKey, config.EnvSecretKey)
	}
	if _, err := client.Authenticate(ctx, a.cfg.Credentials.Credentials()); err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}
	return client, nil
}

// print writes v as indented JSON, or through human when the output is human
func (a *app) print(v interface{}, human func(w io.Writer)) error {
	if a.flags.Output == OutputJSON || human == nil {
		return printJSON(a.out, v)
	}
	human(a.out)
	return nil
}

func (a *app) printMetrics() error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			var value string
			switch {
			case m.Counter != nil:
				value = fmt.Sprint(m.GetCounter().GetValue())
			case m.Histogram != nil:
				value = fmt.Sprintf("count=%d sum=%.6f", m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %s", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(a.errOut, l)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// cliError is the JSON shape of a failed command
type cliError struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
}

func printError(w io.Writer, output string, err error) {
	if output != OutputJSON || errors.Is(err, ErrUnsupportedOutput) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	e := cliError{Error: err.Error()}
	if apiErr, ok := xld.AsAPIError(err); ok {
		e.StatusCode = apiErr.StatusCode
	}
	if jsonErr := printJSON(w, e); jsonErr != nil {
		fmt.Fprintf(os.Stderr, "couldn't format error as JSON: %v\noriginal error: %v\n", jsonErr, err)
	}
}

// readPayload decodes a --payload value: inline JSON, @file, or - for stdin
func readPayload(cmd *cobra.Command, payload string, v interface{}) error {
	var raw []byte
	switch {
	case payload == "":
		return errors.New("--payload is required")
	case payload == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading payload from stdin: %w", err)
		}
		raw = b
	case strings.HasPrefix(payload, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(payload, "@"))
		if err != nil {
			return fmt.Errorf("reading payload file: %w", err)
		}
		raw = b
	default:
		raw = []byte(payload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
