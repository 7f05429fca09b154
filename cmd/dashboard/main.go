package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/tri-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tri-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/tri-dashboard/internal/adapter/reference"
	"github.com/couchcryptid/tri-dashboard/internal/adapter/source"
	"github.com/couchcryptid/tri-dashboard/internal/config"
	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
	"github.com/couchcryptid/tri-dashboard/internal/pipeline"
)

// httpWriteSlack is added to the fetch timeout so a cold load can finish
// rendering before the server write deadline.
const httpWriteSlack = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	variants := pipeline.NewVariants(cfg.TRIURLTemplate, cfg.PointSourcePath)
	if _, err := variants.Get(cfg.DefaultVariant); err != nil {
		logger.Error("invalid DEFAULT_VARIANT", "error", err)
		os.Exit(1)
	}

	client := source.NewClient(cfg.FetchTimeout, logger, metrics)
	refs := reference.NewLoader(client, reference.Paths{
		NAICS:      cfg.NAICSPath,
		Counties:   cfg.CountiesPath,
		Toxicity:   cfg.ToxicityPath,
		Facilities: cfg.FacilitiesPath,
	}, logger)

	// Summary export is feature-flagged via KAFKA_ENABLED.
	var publisher pipeline.SummaryPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		metrics.PublishEnabled.Set(1)
		logger.Info("kafka summary export enabled", "topic", cfg.KafkaSummaryTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka summary export disabled")
	}

	p := pipeline.New(client, refs, variants, cfg.UnitPolicy, publisher, logger, metrics)
	loader := pipeline.NewCachedLoader(p, cfg.DatasetCacheSize, metrics)
	limits := dashboard.NewLimits(cfg, variants)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.FetchTimeout+httpWriteSlack, httpadapter.Deps{
		Loader:  loader,
		Ready:   p,
		Limits:  limits,
		Metrics: metrics,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Load the default dataset so the first page view is served from cache.
	go pipeline.Warm(ctx, loader, dashboard.DefaultState(limits).Request(), logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
