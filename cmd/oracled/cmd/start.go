package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/paw-chain/tee-oracle/api"
	"github.com/paw-chain/tee-oracle/app"
	"github.com/paw-chain/tee-oracle/app/health"
	"github.com/paw-chain/tee-oracle/app/telemetry"
	"github.com/paw-chain/tee-oracle/pkg/pricecache"
)

const dbName = "oracle"

// StartCmd returns the command that runs the oracle and its API server
func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the oracle API server",
		Long: `Open the entity store, apply genesis on first start and serve the HTTP API
until interrupted. Prometheus metrics and the Redis price mirror start when
enabled in config.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runNode(ctx, cfg, logger)
		},
	}
}

// openDB opens the entity store configured by cfg
func openDB(cfg app.Config) (dbm.DB, error) {
	if cfg.DBBackend == app.DBBackendMemDB {
		return dbm.NewMemDB(), nil
	}
	return dbm.NewDB(dbName, dbm.BackendType(cfg.DBBackend), cfg.DataPath())
}

func runNode(ctx context.Context, cfg app.Config, logger log.Logger) error {
	provider, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	callMetrics, err := app.NewCallMetrics(provider.Meter())
	if err != nil {
		return err
	}

	genesis, err := readGenesis(cfg)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", cfg.DBBackend, err)
	}

	oracle, err := app.NewOracleApp(logger, db, cfg.Owner, genesis,
		app.WithInvariantChecks(cfg.CheckInvariants),
		app.WithTracer(provider.Tracer()),
		app.WithCallMetrics(callMetrics),
	)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := oracle.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	checker := health.NewChecker(logger, health.Config{
		MaxResponseTime: 5 * time.Second,
		CacheDuration:   5 * time.Second,
		Version:         app.AppVersion,
	})
	oracle.RegisterHealthProbes(checker)
	checker.Register(health.PingProbe("telemetry", func(context.Context) error {
		return provider.HealthCheck()
	}))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Redis.Enabled {
		rdb, err := pricecache.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		sink := pricecache.NewSink(rdb, cfg.Redis, logger)
		sink.Start(ctx)
		defer sink.Close()

		oracle.Subscribe(sink.HandleEvents)
		checker.Register(health.PingProbe("redis", sink.Ping))
	}

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(ctx, cfg.Metrics.Listen, logger)
		})
	}

	if cfg.API.Listen == "" {
		logger.Info("api.listen is empty, serving no requests")
		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
	} else {
		server, err := api.NewServer(oracle, checker, api.ConfigFromApp(cfg.API), logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return server.Start(ctx)
		})
	}

	logger.Info("oracle started", "owner", cfg.Owner, "version", oracle.LastVersion())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("oracle stopped")
	return nil
}
