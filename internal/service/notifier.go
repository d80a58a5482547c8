// Package service runs the scan, settle and recommend workflow for each
// enabled sport.
package service

import (
	"context"

	"github.com/yourusername/b2b-edge/internal/models"
)

// Notifier is told about placed and settled wagers
type Notifier interface {
	NotifyWager(ctx context.Context, w models.Wager) error
	NotifySettlement(ctx context.Context, w models.Wager, bankroll float64) error
}

// NopNotifier discards notifications
type NopNotifier struct{}

// NotifyWager does nothing
func (NopNotifier) NotifyWager(context.Context, models.Wager) error { return nil }

// NotifySettlement does nothing
func (NopNotifier) NotifySettlement(context.Context, models.Wager, float64) error { return nil }
