// Package cli implements the xld command line tool
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xld/xld-go/pkg/xld"
)

// Version is the tool version, set at build time
var Version = "dev"

const (
	OutputJSON  = "json"
	OutputHuman = "human"
)

var ErrUnsupportedOutput = errors.New(`unsupported output, use "json" or "human"`)

// RootFlags are the flags shared by every command
type RootFlags struct {
	Env     string
	BaseURL string
	Output  string
	EnvFile string
	Metrics bool
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewCmdRoot(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		output, _ := root.PersistentFlags().GetString("output")
		printError(os.Stderr, output, err)
		stop()
		os.Exit(1)
	}
}

// NewCmdRoot builds the xld command tree writing results to out and logs
// and diagnostics to errOut.
func NewCmdRoot(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "xld",
		Short:         "Call the XLD payments API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.flags.Output != OutputJSON && a.flags.Output != OutputHuman {
				return ErrUnsupportedOutput
			}
			if a.flags.Env != "" {
				if _, err := xld.ParseEnvironment(a.flags.Env); err != nil {
					return err
				}
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.flags.Metrics {
				return a.printMetrics()
			}
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.Env, "env", "", "API environment, development or production (default from XLD_ENVIRONMENT)")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "API base URL (default from XLD_BASE_URL)")
	pf.StringVarP(&a.flags.Output, "output", "o", OutputHuman, "Output format, json or human")
	pf.StringVar(&a.flags.EnvFile, "env-file", "", "Read configuration from this file instead of .env")
	pf.BoolVar(&a.flags.Metrics, "metrics", false, "Print client request metrics to stderr when done")

	cmd.AddCommand(
		newCmdAuth(a),
		newCmdCountries(a),
		newCmdChains(a),
		newCmdTokens(a),
		newCmdGas(a),
		newCmdCategories(a),
		newCmdBillers(a),
		newCmdOperators(a),
		newCmdProducts(a),
		newCmdProduct(a),
		newCmdDestinations(a),
		newCmdPrice(a),
		newCmdQuote(a),
		newCmdConfirm(a),
		newCmdStatus(a),
		newCmdHistory(a),
		newCmdSandbox(a),
		newCmdVersion(a),
	)
	return cmd
}

func newCmdVersion(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.print(map[string]string{"version": Version}, func(w io.Writer) {
				fmt.Fprintf(w, "xld %s\n", Version)
			})
		},
	}
}
