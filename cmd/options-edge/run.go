package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/options-edge/internal/health"
	"github.com/yourusername/options-edge/internal/metrics"
	"github.com/yourusername/options-edge/internal/scheduler"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled scanner with health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(cmd.Context())
		},
	}
}

func runService(ctx context.Context) error {
	log.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
	}).Info("Starting options-edge")

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = newScheduler(a)
		if err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		log.WithFields(logrus.Fields{
			"next_scan":       sched.GetNextRun(scheduler.JobScan),
			"next_volatility": sched.GetNextRun(scheduler.JobVolatility),
		}).Info("Scheduler running")
	}

	var srv *health.Server
	if cfg.Health.Enabled {
		hc := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Port:        cfg.Health.Port,
			MetricsPath: cfg.Metrics.Path,
			Logger:      log,
			DB:          a.db,
		}
		if cfg.Metrics.Enabled {
			hc.MetricsHandler = metrics.Handler()
		}
		if sched != nil {
			hc.Scheduler = sched
		}
		srv = health.NewServer(hc)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
		srv.SetReady(true)
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	if srv != nil {
		srv.SetReady(false)
	}
	if sched != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			log.WithError(err).Warn("Scheduler did not stop cleanly")
		}
	}

	log.Info("options-edge stopped")
	return nil
}

func newScheduler(a *app) (*scheduler.Scheduler, error) {
	hours, err := scheduler.NewMarketHours(cfg.Scheduler.Timezone, cfg.Scheduler.MarketOpen, cfg.Scheduler.MarketClose)
	if err != nil {
		return nil, fmt.Errorf("invalid market hours: %w", err)
	}

	sched := scheduler.NewScheduler(scheduler.Config{
		ScanCron:        cfg.Scheduler.ScanCron,
		VolatilityCron:  cfg.Scheduler.VolatilityCron,
		Hours:           hours,
		MarketHoursOnly: cfg.Scheduler.MarketHoursOnly,
		JobTimeout:      cfg.Scheduler.JobTimeout(),
		Persist:         cfg.Scanner.Persist,
	}, a.scanner, a.volatility, a.repos.Watchlist, log)

	if err := sched.Schedule(); err != nil {
		return nil, fmt.Errorf("failed to schedule jobs: %w", err)
	}
	return sched, nil
}
