package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	catalogredis "github.com/dora-network/num2int/catalog/redis"
	"github.com/dora-network/num2int/invalidation"
	"github.com/dora-network/num2int/kafka"
	"github.com/dora-network/num2int/logger"
	"github.com/dora-network/num2int/metrics"
	"github.com/dora-network/num2int/operator"
	"github.com/dora-network/num2int/planner"
	"github.com/dora-network/num2int/redis"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a folding worker against the redis catalog",
		Long: `Run a folding worker: keep the operator registry loaded from the redis catalog,
empty it whenever the invalidation topic reports a change, and expose fold metrics.
Logs go through the process logger configured by DORA_LOG_LEVEL and DORA_LOG_DIR.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.Config()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, interval)
		},
	}
	cmd.Flags().DurationVar(&interval, "refresh-interval", 30*time.Second, "how often to reload an emptied registry and report consumer lag")
	return cmd
}

func serve(ctx context.Context, cfg planner.Config, interval time.Duration) error {
	log := logger.Global().With().Str("component", "worker").Logger()

	inst := metrics.NewFoldInstrumentation(cfg.Metrics.Namespace)
	srv, err := metrics.StartMetricsServer(cfg.Metrics, inst, log, version)
	if err != nil {
		return err
	}
	if srv != nil {
		defer func() {
			if err := srv.Stop(); err != nil {
				log.Error().Err(err).Msg("failed to stop metrics server")
			}
		}()
	}

	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	catalog := catalogredis.NewCatalog(rdb, cfg.Redis.KeyPrefix, cfg.CatalogTimeout, log)

	listener := invalidation.New(
		invalidation.WithKafkaConfig(cfg.Kafka),
		invalidation.WithLogger(log),
		invalidation.WithRecorder(inst),
	)
	engine := planner.NewEngine(catalog,
		planner.WithLogger(log),
		planner.WithMetrics(inst),
		planner.WithInvalidationSource(listener),
		planner.WithConfig(cfg),
	)

	if len(cfg.Kafka.Brokers) > 0 {
		if err := listener.Init(ctx); err != nil {
			return err
		}
		if err := listener.Start(ctx); err != nil {
			return err
		}
		defer listener.Stop()
	} else {
		log.Warn().Msg("no kafka brokers configured, catalog changes will not be noticed")
	}

	if err := engine.Warmup(ctx); err != nil {
		log.Error().Err(err).Msg("operator registry warmup failed, retrying on refresh")
	}
	log.Info().
		Bool("fold_enabled", engine.FoldEnabled()).
		Int("operators", engine.Registry().Len()).
		Msg("folding worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("folding worker stopping")
			return nil
		case <-ticker.C:
			refresh(ctx, engine, listener, log)
		}
	}
}

func refresh(ctx context.Context, engine *planner.Engine, listener *invalidation.Listener, log zerolog.Logger) {
	if engine.Registry().State() == operator.StateEmpty {
		if err := engine.Warmup(ctx); err != nil {
			log.Error().Err(err).Msg("operator registry reload failed")
		}
	}
	if listener.Status() != invalidation.StatusRunning {
		return
	}
	lags, err := listener.Lag(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not read invalidation consumer lag")
		return
	}
	log.Debug().
		Int64("lag", kafka.TotalLag(lags)).
		Int64("catalog_version", listener.LastVersion()).
		Int64("invalidations", listener.Received()).
		Msg("invalidation consumer")
}
