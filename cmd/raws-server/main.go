package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/tyson-swetnam/raws-mcp/internal/adapter/http"
	"github.com/tyson-swetnam/raws-mcp/internal/adapter/httpclient"
	"github.com/tyson-swetnam/raws-mcp/internal/adapter/mesowest"
	"github.com/tyson-swetnam/raws-mcp/internal/adapter/nws"
	"github.com/tyson-swetnam/raws-mcp/internal/adapter/synoptic"
	"github.com/tyson-swetnam/raws-mcp/internal/config"
	"github.com/tyson-swetnam/raws-mcp/internal/coordinator"
	"github.com/tyson-swetnam/raws-mcp/internal/domain"
	"github.com/tyson-swetnam/raws-mcp/internal/observability"
	"github.com/tyson-swetnam/raws-mcp/internal/scheduler"
	"github.com/tyson-swetnam/raws-mcp/internal/tools"
	"github.com/tyson-swetnam/raws-mcp/internal/transform"
)

func main() {
	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clk := clockwork.NewRealClock()

	clientCfg := httpclient.Config{
		Timeout:    cfg.UpstreamTimeout,
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   cfg.RetryMaxDelay,
	}

	providers := []domain.Provider{
		synoptic.New(cfg.SynopticToken, cfg.SynopticBaseURL,
			httpclient.New("synoptic", clientCfg, logger)),
		mesowest.New(cfg.MesowestToken, cfg.MesowestBaseURL,
			httpclient.New("mesowest", clientCfg, logger)),
	}

	var alerts domain.AlertsProvider
	if cfg.AlertsEnabled {
		alerts = nws.New(cfg.NWSBaseURL, cfg.UserAgent,
			httpclient.New("nws", clientCfg, logger))
		logger.Info("weather alerts enabled", "base_url", cfg.NWSBaseURL)
	} else {
		logger.Info("weather alerts disabled")
	}

	coord := coordinator.New(providers, alerts, cfg.CacheCapacity, coordinator.TTLPolicy{
		Current: cfg.CurrentTTL,
		Search:  cfg.SearchTTL,
		History: cfg.HistoryTTL,
		Alerts:  cfg.AlertsTTL,
	}, clk, logger, metrics)

	svc := tools.NewService(coord, transform.New(logger, clk), tools.Flags{
		AlertsEnabled:      cfg.AlertsEnabled,
		FireIndicesEnabled: cfg.FireIndicesEnabled,
	}, clk, logger)

	ready := httpadapter.ReadinessFunc(func(_ context.Context) error {
		if len(providers) == 0 {
			return fmt.Errorf("no upstream providers configured")
		}
		return nil
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, ready, metrics, clk, logger)

	sweep, err := scheduler.New(coord, cfg.SweepInterval, logger)
	if err != nil {
		logger.Error("failed to schedule cache sweep", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	sweep.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sweep.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
