package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/NoahAizen44/SmarterTips/core"
	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/metrics"
	"github.com/NoahAizen44/SmarterTips/internal/scheduler"
	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/spf13/cobra"
)

// scheduleCmd retrains periodically until interrupted.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Retrain models on a fixed interval",
	Long: `Run the retrain batch immediately and then every --every until interrupted.

When --metrics-port is set, retrain metrics are served in Prometheus format on
http://localhost:PORT/metrics. --otlp-endpoint additionally pushes them to an
OpenTelemetry collector.

Examples:
  # Daily retrain of the whole league
  smartertips schedule --every 24h

  # Hourly retrain of one team with metrics
  smartertips schedule --team boston_celtics --every 1h --metrics-port 9464`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runSchedule(ctx, contract.NewLogger(cfg.LogLevel))
	},
}

// runSchedule wires telemetry and the retrain job, then blocks until ctx is done.
func runSchedule(ctx context.Context, logger *slog.Logger) error {
	recorder, handler, shutdown, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.MetricsPort > 0,
		OtlpEndpoint: cfg.OTLPEndpoint,
		OtlpInsecure: cfg.OTLPInsecure,
	})
	if err != nil {
		logger.Warn("metrics setup failed, continuing without telemetry", "error", err)
		recorder, handler, shutdown = metrics.NewRecorder(), nil, func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}()

	if handler != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", handler)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("starting metrics server", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	jobCtx := core.WithSuppressHeader(ctx)
	sched, err := scheduler.New(jobCtx, cfg.ScheduleInterval, func(ctx context.Context) (schema.RetrainSummary, error) {
		return core.RunRetrain(ctx, cfg, storeManager, logger, recorder)
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("retrain scheduled", "every", cfg.ScheduleInterval, "model_version", cfg.ModelVersion)
	return sched.Run(ctx)
}
