// Package scheduler runs the scan cycle on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/service"
)

// CycleRunner runs one scan cycle across all sports
type CycleRunner interface {
	RunCycle(ctx context.Context) ([]*service.ScanResult, error)
}

// CycleHook observes each finished cycle
type CycleHook func(results []*service.ScanResult, err error)

// Scheduler manages the recurring scan job
type Scheduler struct {
	cron         *cron.Cron
	runner       CycleRunner
	logger       *logrus.Entry
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
	cycleTimeout time.Duration
	hooks        []CycleHook
	cycleMu      sync.Mutex
}

// cronLogger adapts logrus to cron's logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(toFields(keysAndValues)).Error(msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// NewScheduler creates a new scheduler
func NewScheduler(runner CycleRunner, log *logrus.Logger) *Scheduler {
	entry := logger.OrDiscard(log).WithField("component", "scheduler")
	cl := cronLogger{entry: entry}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:       runner,
		logger:       entry,
		jobIDs:       make([]cron.EntryID, 0),
		cycleTimeout: 30 * time.Minute,
	}
}

// OnCycle registers a hook called after every cycle
func (s *Scheduler) OnCycle(hook CycleHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// ScheduleScan schedules the scan cycle with a standard five-field cron expression
func (s *Scheduler) ScheduleScan(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cycleTimeout)
		defer cancel()
		_, _ = s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled scan cycle")
	return nil
}

// RunNow runs one cycle immediately. Cycles never overlap.
func (s *Scheduler) RunNow(ctx context.Context) ([]*service.ScanResult, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	results, err := s.runner.RunCycle(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scan cycle error")
	}

	s.mu.RLock()
	hooks := append([]CycleHook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, hook := range hooks {
		hook(results, err)
	}
	return results, err
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

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}
