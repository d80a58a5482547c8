package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/metrics"
)

// Scan cycle statuses
const (
	CycleSuccess = "success"
	CyclePartial = "partial"
	CycleFailed  = "failed"
)

// Runner scans every configured sport in turn
type Runner struct {
	recommenders []*Recommender
	logger       *logrus.Entry
}

// NewRunner creates a runner over the given recommenders
func NewRunner(recommenders []*Recommender, log *logrus.Logger) *Runner {
	return &Runner{
		recommenders: recommenders,
		logger:       logger.OrDiscard(log).WithField("component", "runner"),
	}
}

// RunCycle scans each sport. A failing sport does not stop the others; its
// error is joined into the returned error alongside the successful results.
func (r *Runner) RunCycle(ctx context.Context) ([]*ScanResult, error) {
	start := time.Now()
	var (
		results []*ScanResult
		errs    []error
	)
	for _, rec := range r.recommenders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := rec.Scan(ctx)
		if err != nil {
			r.logger.WithError(err).WithField("sport", rec.Sport()).Error("Scan failed")
			errs = append(errs, fmt.Errorf("%s: %w", rec.Sport(), err))
			continue
		}
		results = append(results, res)
	}

	status := CycleSuccess
	switch {
	case len(errs) > 0 && len(results) == 0:
		status = CycleFailed
	case len(errs) > 0:
		status = CyclePartial
	}
	elapsed := time.Since(start)
	metrics.RecordScanCycle(status, elapsed.Seconds())
	r.logger.WithFields(logrus.Fields{
		"status":   status,
		"sports":   len(r.recommenders),
		"duration": elapsed.String(),
	}).Info("Scan cycle finished")

	return results, errors.Join(errs...)
}

// SettleAll settles finished wagers for every sport
func (r *Runner) SettleAll(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, rec := range r.recommenders {
		n, err := rec.Settle(ctx)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rec.Sport(), err))
		}
	}
	return total, errors.Join(errs...)
}
