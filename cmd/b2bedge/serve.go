package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/b2b-edge/internal/health"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/scheduler"
	"github.com/yourusername/b2b-edge/internal/service"
)

var runOnStart bool

func init() {
	serveCmd.Flags().BoolVar(&runOnStart, "run-now", false, "Run one scan cycle immediately after starting")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled scans with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, serve)
	},
}

func serve(ctx context.Context, a *app) error {
	metrics.InitRegistry()

	if err := a.enableAlerts(); err != nil {
		return err
	}
	sports, err := a.sports()
	if err != nil {
		return err
	}
	runner, err := a.runner(ctx, sports)
	if err != nil {
		return err
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: a.cfg.App.Name,
		Version:     Version,
		Port:        a.cfg.Schedule.HealthPort,
		MetricsPath: a.cfg.Metrics.Path,
		Logger:      a.log,
	})
	if a.db != nil {
		healthServer.AddCheck("database", a.db.Ping)
	}
	healthServer.AddCheck("datasource", func(context.Context) error {
		if a.factory.CircuitOpen() {
			return errors.New("circuit breaker open")
		}
		return nil
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if a.cfg.Metrics.Enabled && a.cfg.Metrics.Port != a.cfg.Schedule.HealthPort {
		startMetricsServer(ctx, a.cfg.Metrics.Port, a.cfg.Metrics.Path, a.log)
	}

	sched := scheduler.NewScheduler(runner, a.log)
	sched.OnCycle(func(results []*service.ScanResult, err error) {
		status := service.CycleSuccess
		if err != nil {
			status = service.CycleFailed
			if len(results) > 0 {
				status = service.CyclePartial
			}
		}
		healthServer.RecordScan(time.Now(), status)
	})
	if a.cfg.Schedule.Enabled {
		if err := sched.ScheduleScan(a.cfg.Schedule.ScanCron); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	} else {
		a.log.Warn("Scheduled scans disabled; serving health endpoints only")
	}

	if runOnStart {
		if _, err := sched.RunNow(ctx); err != nil {
			a.log.WithError(err).Error("Initial scan cycle failed")
		}
	}

	healthServer.SetReady(true)
	a.log.WithFields(logrus.Fields{
		"sports":      len(sports),
		"scan_cron":   a.cfg.Schedule.ScanCron,
		"health_port": a.cfg.Schedule.HealthPort,
	}).Info("b2b-edge service running")

	<-ctx.Done()
	a.log.Info("Shutdown signal received")
	healthServer.SetReady(false)
	return nil
}

// startMetricsServer exposes the registry on its own port
func startMetricsServer(ctx context.Context, port int, path string, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server error")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
