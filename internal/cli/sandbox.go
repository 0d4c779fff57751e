package cli

import (
	"github.com/spf13/cobra"
	"github.com/xld/xld-go/internal/sandbox"
)

func newCmdSandbox(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local in-memory XLD API",
		Long: `Run a local in-memory implementation of the XLD API.

The configured XLD_PUBLIC_KEY and XLD_SECRET_KEY are registered as the
sandbox merchant. Point XLD_BASE_URL at the sandbox to use it from the
other commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			sc := sandbox.FromConfig(cfg)
			if addr != "" {
				sc.Addr = addr
			}
			if len(sc.Merchants) == 0 {
				a.logger.Warn().Msg("no merchant keys configured, /authenticate will reject every request")
			}

			srv, err := sandbox.New(sc, sandbox.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from XLD_SANDBOX_ADDR)")
	return cmd
}
