package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/datasource"
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/ledger"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// Recommendation outcomes
const (
	StatusPlaced    = "placed"
	StatusDuplicate = "duplicate"
	StatusZeroStake = "zero_stake"
	StatusBadPick   = "invalid_pick"
)

// RecommenderConfig holds one sport's scan settings
type RecommenderConfig struct {
	Sport        models.Sport
	Season       string
	BackToBack   gamelog.BackToBackDefinition
	FormWindow   int
	UpcomingDays int
}

// Recommendation is a bettable signal and what the ledger did with it
type Recommendation struct {
	Signal strategy.Signal `json:"signal"`
	Status string          `json:"status"`
	Wager  *models.Wager   `json:"wager,omitempty"`
}

// ScanResult is the outcome of one sport's scan
type ScanResult struct {
	Sport           models.Sport                   `json:"sport"`
	Season          string                         `json:"season"`
	ScannedAt       time.Time                      `json:"scanned_at"`
	Settled         int                            `json:"settled"`
	UpcomingGames   int                            `json:"upcoming_games"`
	Recommendations []Recommendation               `json:"recommendations"`
	Skips           []strategy.Signal              `json:"skips"`
	Standings       map[string]datasource.Standing `json:"standings,omitempty"`
}

// Placed returns how many new wagers the scan recorded
func (r *ScanResult) Placed() int {
	n := 0
	for _, rec := range r.Recommendations {
		if rec.Status == StatusPlaced {
			n++
		}
	}
	return n
}

// Recommender fetches a sport's schedule, settles finished games and turns
// the upcoming back-to-back matchups into wagers and skip reasons
type Recommender struct {
	cfg       RecommenderConfig
	schedule  datasource.ScheduleSource
	standings datasource.StandingsSource
	strategy  strategy.Strategy
	book      *ledger.Ledger
	settler   *Settler
	notifier  Notifier
	now       func() time.Time
	logger    *logrus.Entry
}

// NewRecommender creates a recommender. standings and notifier may be nil.
func NewRecommender(
	cfg RecommenderConfig,
	schedule datasource.ScheduleSource,
	standings datasource.StandingsSource,
	strat strategy.Strategy,
	book *ledger.Ledger,
	notifier Notifier,
	log *logrus.Logger,
) *Recommender {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.BackToBack == "" {
		cfg.BackToBack = gamelog.PlayedYesterday
	}
	return &Recommender{
		cfg:       cfg,
		schedule:  schedule,
		standings: standings,
		strategy:  strat,
		book:      book,
		settler:   NewSettler(book, notifier, log),
		notifier:  notifier,
		now:       time.Now,
		logger:    logger.OrDiscard(log).WithFields(logrus.Fields{"component": "recommender", "sport": cfg.Sport}),
	}
}

// Sport returns the sport this recommender scans
func (r *Recommender) Sport() models.Sport {
	return r.cfg.Sport
}

// Settle fetches the season and settles any finished wagers without scanning
func (r *Recommender) Settle(ctx context.Context) (int, error) {
	data, err := r.schedule.FetchSeason(ctx, r.cfg.Sport, r.cfg.Season)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s season %s: %w", r.cfg.Sport, r.cfg.Season, err)
	}
	return r.settler.SettleCompleted(ctx, data.Completed)
}

// Scan runs fetch, settle, evaluate and record for the upcoming window
func (r *Recommender) Scan(ctx context.Context) (*ScanResult, error) {
	now := r.now()
	result := &ScanResult{Sport: r.cfg.Sport, Season: r.cfg.Season, ScannedAt: now}

	data, err := r.schedule.FetchSeason(ctx, r.cfg.Sport, r.cfg.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s season %s: %w", r.cfg.Sport, r.cfg.Season, err)
	}

	result.Settled, err = r.settler.SettleCompleted(ctx, data.Completed)
	if err != nil {
		return nil, err
	}

	upcoming := data.UpcomingWithin(now, r.cfg.UpcomingDays)
	result.UpcomingGames = len(upcoming)
	timeline := gamelog.NewTimeline(data.History(), r.cfg.BackToBack, r.cfg.FormWindow)
	matchups := timeline.Evaluate(upcoming)

	signals, err := r.strategy.Evaluate(ctx, strategy.Context{
		Sport:       r.cfg.Sport,
		Matchups:    matchups,
		CurrentTime: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s matchups: %w", r.cfg.Sport, err)
	}

	for _, sig := range signals {
		metrics.RecordDecision(string(r.cfg.Sport), string(sig.Decision.Tier))
		if !r.strategy.ShouldBet(sig) {
			result.Skips = append(result.Skips, sig)
			continue
		}
		rec, err := r.record(ctx, sig)
		if err != nil {
			return nil, err
		}
		result.Recommendations = append(result.Recommendations, rec)
	}

	if r.standings != nil {
		standings, err := r.standings.FetchStandings(ctx, r.cfg.Sport)
		if err != nil {
			r.logger.WithError(err).Warn("Standings unavailable")
		} else {
			result.Standings = standings
		}
	}

	sort.SliceStable(result.Recommendations, func(i, j int) bool {
		a, b := result.Recommendations[i].Signal, result.Recommendations[j].Signal
		if !a.Game.Date.Equal(b.Game.Date) {
			return a.Game.Date.Before(b.Game.Date)
		}
		return a.Decision.Tier.Rank() > b.Decision.Tier.Rank()
	})

	r.logger.WithFields(logrus.Fields{
		"season":          r.cfg.Season,
		"settled":         result.Settled,
		"upcoming":        result.UpcomingGames,
		"recommendations": len(result.Recommendations),
		"placed":          result.Placed(),
		"skips":           len(result.Skips),
	}).Info("Scan complete")
	return result, nil
}

func (r *Recommender) record(ctx context.Context, sig strategy.Signal) (Recommendation, error) {
	rec := Recommendation{Signal: sig}
	sport := string(r.cfg.Sport)
	key := sig.Game.Key()

	if existing, ok := r.book.Get(key); ok {
		rec.Status = StatusDuplicate
		rec.Wager = &existing
		metrics.RecordWagerRejected(sport, StatusDuplicate)
		return rec, nil
	}

	added, err := r.book.AddWager(ctx, ledger.Candidate{
		Game:          sig.Game,
		Pick:          sig.Pick,
		Tier:          sig.Decision.Tier,
		Reason:        sig.Decision.Reason,
		Odds:          sig.Odds,
		FormAdvantage: sig.Decision.FormAdvantage,
		RestedWins:    sig.Decision.RestedWins,
		B2BWins:       sig.Decision.B2BWins,
		Adjustments:   sig.Decision.Adjustments,
	})
	if err != nil {
		return rec, fmt.Errorf("failed to record wager for %s: %w", sig.Game, err)
	}
	if !added {
		rec.Status = StatusZeroStake
		if sig.Pick != sig.Game.HomeTeam && sig.Pick != sig.Game.AwayTeam {
			rec.Status = StatusBadPick
		}
		metrics.RecordWagerRejected(sport, rec.Status)
		return rec, nil
	}

	w, _ := r.book.Get(key)
	rec.Status = StatusPlaced
	rec.Wager = &w
	metrics.RecordWagerPlaced(sport, string(w.Tier))
	metrics.RecordSignalWinRate(sport, string(w.Tier), w.EdgePercent)
	if err := r.notifier.NotifyWager(ctx, w); err != nil {
		r.logger.WithError(err).WithField("wager_id", w.ID).Warn("Wager notification failed")
	}
	return rec, nil
}
