// Package scheduler triggers the volatility refresh and the universe scan on
// cron schedules, gated to market hours.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/options-edge/internal/metrics"
	"github.com/yourusername/options-edge/internal/models"
)

// Job names used in logs and metrics
const (
	JobScan       = "scan"
	JobVolatility = "volatility"
)

// ErrJobInFlight is returned when a job is triggered while its previous run is still going
var ErrJobInFlight = errors.New("job already running")

// ErrMarketClosed is returned when a market-hours job is triggered outside the session
var ErrMarketClosed = errors.New("market closed")

// UniverseScanner runs a scan over the watched universe
type UniverseScanner interface {
	ScanUniverse(ctx context.Context, persist bool) (map[string][]*models.Candidate, error)
}

// VolatilityRefresher appends fresh volatility records
type VolatilityRefresher interface {
	RefreshAll(ctx context.Context, symbols []string) (int, error)
}

// SymbolSource lists the watched universe
type SymbolSource interface {
	ListWatchedSymbols(ctx context.Context) ([]string, error)
}

// Config controls schedules and gating
type Config struct {
	ScanCron        string
	VolatilityCron  string
	Hours           MarketHours
	MarketHoursOnly bool
	JobTimeout      time.Duration
	Persist         bool
}

// Scheduler manages the scheduled scan jobs
type Scheduler struct {
	cron       *cron.Cron
	cfg        Config
	scanner    UniverseScanner
	volatility VolatilityRefresher
	symbols    SymbolSource
	logger     *logrus.Entry
	now        func() time.Time

	mu        sync.RWMutex
	isRunning bool
	jobIDs    map[string]cron.EntryID

	flightMu sync.Mutex
	inFlight map[string]bool

	// jobs derive their context from base; Stop cancels it
	ctxMu  sync.Mutex
	base   context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler; jobs are registered with Schedule
func NewScheduler(cfg Config, scanner UniverseScanner, vol VolatilityRefresher, symbols SymbolSource, logger *logrus.Logger) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	loc := cfg.Hours.Location
	if loc == nil {
		loc = time.UTC
	}
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		cfg:        cfg,
		scanner:    scanner,
		volatility: vol,
		symbols:    symbols,
		logger:     logger.WithField("component", "scheduler"),
		now:        time.Now,
		jobIDs:     make(map[string]cron.EntryID),
		inFlight:   make(map[string]bool),
		base:       base,
		cancel:     cancel,
	}
}

// Schedule registers the volatility refresh and scan jobs
func (s *Scheduler) Schedule() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{JobVolatility, s.cfg.VolatilityCron, s.RunVolatilityRefresh},
		{JobScan, s.cfg.ScanCron, s.RunScan},
	}

	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		job := job
		entryID, err := s.cron.AddFunc(job.spec, func() { s.trigger(job.name, job.run) })
		if err != nil {
			return fmt.Errorf("failed to add %s job: %w", job.name, err)
		}
		s.jobIDs[job.name] = entryID
		s.logger.WithFields(logrus.Fields{"job": job.name, "cron": job.spec}).Info("Scheduled job")
	}

	return nil
}

// trigger runs a job with the configured deadline and records its outcome
func (s *Scheduler) trigger(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(s.baseContext(), s.cfg.JobTimeout)
	defer cancel()

	start := s.now()
	err := run(ctx)
	log := s.logger.WithFields(logrus.Fields{"job": name, "duration_ms": time.Since(start).Milliseconds()})

	switch {
	case errors.Is(err, ErrMarketClosed):
		metrics.RecordScheduledJob(name, "skipped_closed")
		log.Debug("Skipped job outside market hours")
	case errors.Is(err, ErrJobInFlight):
		metrics.RecordScheduledJob(name, "skipped_in_flight")
		log.Warn("Skipped job, previous run still in progress")
	case err != nil:
		metrics.RecordScheduledJob(name, "failure")
		log.WithError(err).Error("Scheduled job failed")
	default:
		metrics.RecordScheduledJob(name, "success")
		log.Info("Scheduled job completed")
	}
}

// RunVolatilityRefresh refreshes volatility records for the watched universe
func (s *Scheduler) RunVolatilityRefresh(ctx context.Context) error {
	if err := s.gate(); err != nil {
		return err
	}
	release, err := s.acquire(JobVolatility)
	if err != nil {
		return err
	}
	defer release()

	_, err = s.refreshVolatility(ctx)
	return err
}

// RunScan refreshes volatility and then scans the universe
func (s *Scheduler) RunScan(ctx context.Context) error {
	if err := s.gate(); err != nil {
		return err
	}
	release, err := s.acquire(JobScan)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.refreshVolatility(ctx); err != nil {
		// stale volatility still lets the enhanced detectors run
		s.logger.WithError(err).Warn("Volatility refresh before scan failed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	results, err := s.scanner.ScanUniverse(ctx, s.cfg.Persist)
	if err != nil {
		return fmt.Errorf("universe scan failed: %w", err)
	}

	total := 0
	for _, c := range results {
		total += len(c)
	}
	s.logger.WithFields(logrus.Fields{"symbols": len(results), "candidates": total}).Info("Scheduled scan finished")
	return nil
}

func (s *Scheduler) refreshVolatility(ctx context.Context) (int, error) {
	symbols, err := s.symbols.ListWatchedSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list watched symbols: %w", err)
	}
	return s.volatility.RefreshAll(ctx, symbols)
}

func (s *Scheduler) gate() error {
	if s.cfg.MarketHoursOnly && !s.cfg.Hours.IsOpen(s.now()) {
		return ErrMarketClosed
	}
	return nil
}

// acquire enforces a single in-flight run per job
func (s *Scheduler) acquire(job string) (func(), error) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()

	if s.inFlight[job] {
		return nil, fmt.Errorf("%s: %w", job, ErrJobInFlight)
	}
	s.inFlight[job] = true
	return func() {
		s.flightMu.Lock()
		delete(s.inFlight, job)
		s.flightMu.Unlock()
	}, nil
}

func (s *Scheduler) baseContext() context.Context {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	return s.base
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.ctxMu.Lock()
	if s.base.Err() != nil {
		s.base, s.cancel = context.WithCancel(context.Background())
	}
	s.ctxMu.Unlock()

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop cancels running jobs and waits for them to return until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	s.ctxMu.Lock()
	s.cancel()
	s.ctxMu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop timed out: %w", ctx.Err())
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the next run time of a job, zero when unknown
func (s *Scheduler) GetNextRun(job string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.jobIDs[job]
	if !ok || !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}
