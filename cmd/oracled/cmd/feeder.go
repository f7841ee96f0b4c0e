package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/pkg/feeder"
)

// FeederCmd returns the command that runs a reporter node
func FeederCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feeder",
		Short: "Run a reporter node that fetches and reports prices",
		Long: `Register the node named by feeder.token if it is not yet authorized, then
fetch every configured asset from its sources and report the median on each
feeder.interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			f, err := feeder.NewFromConfig(cfg.Feeder, logger)
			if err != nil {
				return fmt.Errorf("invalid feeder config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("feeder started", "node", f.Node(), "api", cfg.Feeder.APIURL, "assets", len(cfg.Feeder.Assets))
			return f.Run(ctx)
		},
	}
}
