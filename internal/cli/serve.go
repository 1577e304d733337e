package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfcanvas/tfcanvas/internal/server"
	"github.com/tfcanvas/tfcanvas/pkg/pipeline"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve runs the tfcanvas HTTP API: project management, snapshot upload,
and graph and compare views over stored snapshots. Configuration comes from
a TOML file; --listen overrides the configured address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			c, err := server.BuildCache(ctx, cfg.Cache)
			if err != nil {
				return fmt.Errorf("build cache: %w", err)
			}
			st, err := server.BuildStore(ctx, cfg.Mongo)
			if err != nil {
				return fmt.Errorf("build store: %w", err)
			}
			defer func() { _ = st.Close(ctx) }()

			runner := pipeline.NewRunner(c, nil, logger)
			defer runner.Close()

			srv := server.New(st, runner, logger)
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")

	return cmd
}
