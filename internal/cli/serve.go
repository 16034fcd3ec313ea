package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/partsengine/internal/metrics"
	"github.com/matzehuels/partsengine/internal/server"
	"github.com/matzehuels/partsengine/pkg/pipeline"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parts API over HTTP",
		Long: `Serve the parts API:

  POST /v1/parts                 resolve one component
  POST /v1/parts/batch           resolve a JSON array of components
  POST /v1/footprints/normalize  translate a footprint
  GET  /healthz                  liveness
  GET  /metrics                  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if addr == "" {
				addr = c.Config.Server.Addr
			}

			eng, closeCache, err := c.newEngine(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeCache(); err != nil {
					logger.Warn("close cache", "error", err)
				}
			}()

			m := metrics.New()
			m.Register()

			runner := pipeline.NewRunner(eng, c.Config.Batch.Concurrency, logger)
			return server.New(eng, runner, m.Handler(), logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}
