package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/ledger"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/models"
)

// Settler resolves pending wagers against completed games
type Settler struct {
	book     *ledger.Ledger
	notifier Notifier
	logger   *logrus.Entry
}

// NewSettler creates a settler for book
func NewSettler(book *ledger.Ledger, notifier Notifier, log *logrus.Logger) *Settler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Settler{
		book:     book,
		notifier: notifier,
		logger:   logger.OrDiscard(log).WithField("component", "settler"),
	}
}

// SettleCompleted settles every pending wager whose game appears in games as
// completed. Games without a pending wager are ignored, so the same results
// can be fed repeatedly.
func (s *Settler) SettleCompleted(ctx context.Context, games []models.GameRecord) (int, error) {
	settled := 0
	for _, g := range games {
		if !g.Completed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return settled, err
		}

		ok, err := s.book.Settle(ctx, g.Key(), g.HomeWon())
		if err != nil {
			return settled, fmt.Errorf("failed to settle %s: %w", g, err)
		}
		if !ok {
			continue
		}
		settled++

		w, _ := s.book.Get(g.Key())
		current, _ := s.book.Bankroll()
		metrics.RecordWagerSettled(string(w.Sport), string(w.Result))
		if err := s.notifier.NotifySettlement(ctx, w, current); err != nil {
			s.logger.WithError(err).WithField("wager_id", w.ID).Warn("Settlement notification failed")
		}
	}

	s.updateGauges()
	if settled > 0 {
		s.logger.WithField("settled", settled).Info("Settled wagers")
	}
	return settled, nil
}

func (s *Settler) updateGauges() {
	current, _ := s.book.Bankroll()
	metrics.UpdateBankroll(current)
	metrics.UpdateLedger(len(s.book.Pending()), s.book.Summary("").TotalProfit)
}
