// Package ledger records wagers, settles them against results and keeps the
// bankroll durable across runs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/staking"
)

// Rejection reasons for AddWager
const (
	RejectDuplicate   = "duplicate wager"
	RejectZeroStake   = "stake rounds to zero"
	RejectInvalidPick = "pick is neither team"
)

var wagerValidator = validator.New()

// DefaultLiveWinRateMinSample is the completed-wager count needed before the
// live tier win rate replaces the static one
const DefaultLiveWinRateMinSample = 10

// Candidate is a classified matchup offered to the ledger
type Candidate struct {
	Game          models.GameRecord
	Pick          string
	Tier          models.Tier
	Reason        string
	Odds          float64
	FormAdvantage int
	RestedWins    int
	B2BWins       int
	Adjustments   []string
}

// Options configures a ledger
type Options struct {
	InitialBankroll      float64
	LiveWinRateMinSample int
	DefaultOdds          float64
}

// TierTables maps each sport to its tier table
type TierTables map[models.Sport][]models.TierInfo

// Ledger is the wager book. AddWager and Settle are serialised by one mutex.
type Ledger struct {
	mu            sync.Mutex
	store         Store
	sizer         *staking.Sizer
	tiers         map[models.Sport]map[models.Tier]models.TierInfo
	minLiveSample int
	defaultOdds   float64
	state         *models.LedgerState
	index         map[models.WagerKey]int
	audit         *logger.AuditLogger
	now           func() time.Time
}

// Open loads the ledger from store, creating and persisting a fresh one
// with the initial bankroll when none exists
func Open(ctx context.Context, store Store, sizer *staking.Sizer, tiers TierTables, opts Options, log *logrus.Logger) (*Ledger, error) {
	if store == nil || sizer == nil {
		return nil, fmt.Errorf("ledger requires a store and a sizer")
	}
	if opts.LiveWinRateMinSample <= 0 {
		opts.LiveWinRateMinSample = DefaultLiveWinRateMinSample
	}
	if opts.DefaultOdds <= 1 {
		opts.DefaultOdds = staking.DefaultOdds
	}

	l := &Ledger{
		store:         store,
		sizer:         sizer,
		tiers:         make(map[models.Sport]map[models.Tier]models.TierInfo),
		minLiveSample: opts.LiveWinRateMinSample,
		defaultOdds:   opts.DefaultOdds,
		index:         make(map[models.WagerKey]int),
		audit:         logger.NewAuditLogger(logger.OrDiscard(log)),
		now:           time.Now,
	}
	for sport, table := range tiers {
		m := make(map[models.Tier]models.TierInfo, len(table))
		for _, info := range table {
			m[info.Name] = info
		}
		l.tiers[sport] = m
	}

	state, err := store.Load(ctx)
	switch {
	case errors.Is(err, models.ErrNotFound):
		if opts.InitialBankroll <= 0 {
			return nil, fmt.Errorf("initial bankroll must be positive, got %v", opts.InitialBankroll)
		}
		state = &models.LedgerState{
			Bets:            []*models.Wager{},
			CurrentBankroll: opts.InitialBankroll,
			InitialBankroll: opts.InitialBankroll,
		}
		if err := store.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to initialise ledger: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	l.state = state
	for i, w := range state.Bets {
		l.index[w.Key()] = i
	}
	return l, nil
}

// AddWager sizes and records a wager. It returns false without mutating
// anything when the key already exists, the pick names neither team or the
// stake rounds to zero.
func (l *Ledger) AddWager(ctx context.Context, c Candidate) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := c.Game.Key()
	if _, exists := l.index[key]; exists {
		l.audit.LogWagerRejected(key.String(), RejectDuplicate)
		return false, nil
	}
	if c.Pick == "" || (c.Pick != c.Game.HomeTeam && c.Pick != c.Game.AwayTeam) {
		l.audit.LogWagerRejected(key.String(), RejectInvalidPick)
		return false, nil
	}

	odds := c.Odds
	if odds <= 1 {
		odds = l.defaultOdds
	}
	winRate, _ := l.winRateLocked(c.Game.Sport, c.Tier)
	bankroll := l.state.CurrentBankroll
	stake := l.sizer.Size(winRate, odds, bankroll)
	if stake <= 0 {
		l.audit.LogWagerRejected(key.String(), RejectZeroStake)
		return false, nil
	}

	wager := &models.Wager{
		ID:             uuid.New(),
		Date:           key.Date,
		Sport:          c.Game.Sport,
		HomeTeam:       c.Game.HomeTeam,
		AwayTeam:       c.Game.AwayTeam,
		Pick:           c.Pick,
		Odds:           odds,
		Stake:          stake,
		EdgePercent:    winRate,
		Reason:         c.Reason,
		Tier:           c.Tier,
		FormAdvantage:  c.FormAdvantage,
		RestedWins:     c.RestedWins,
		B2BWins:        c.B2BWins,
		Adjustments:    append([]string(nil), c.Adjustments...),
		Result:         models.WagerResultPending,
		BankrollBefore: bankroll,
		CreatedAt:      l.now().UTC(),
	}
	if err := wagerValidator.Struct(wager); err != nil {
		return false, fmt.Errorf("invalid wager %s: %w", key, err)
	}

	l.state.Bets = append(l.state.Bets, wager)
	l.index[key] = len(l.state.Bets) - 1

	if err := l.store.Save(ctx, l.state); err != nil {
		l.state.Bets = l.state.Bets[:len(l.state.Bets)-1]
		delete(l.index, key)
		l.audit.LogPersistenceFailure("add_wager", key.String(), err)
		return false, fmt.Errorf("failed to persist wager %s: %w", key, err)
	}

	l.audit.LogWagerPlacement(wager.ID.String(), key.String(), wager.Pick, string(wager.Tier),
		wager.Stake, wager.Odds, winRate, bankroll, wager.CreatedAt)
	return true, nil
}

// Settle resolves the pending wager for key. It returns false when no
// pending wager matches, so replaying results is harmless.
func (l *Ledger) Settle(ctx context.Context, key models.WagerKey, homeWon bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.index[key]
	if !ok {
		return false, nil
	}
	wager := l.state.Bets[idx]
	if !wager.IsPending() {
		return false, nil
	}

	before := *wager
	bankrollBefore := l.state.CurrentBankroll

	pickWon := (wager.Pick == wager.HomeTeam && homeWon) || (wager.Pick == wager.AwayTeam && !homeWon)
	if pickWon {
		wager.Result = models.WagerResultWon
	} else {
		wager.Result = models.WagerResultLost
	}
	wager.Profit = staking.Profit(wager.Stake, wager.Odds, pickWon)
	settledAt := l.now().UTC()
	wager.SettledAt = &settledAt
	l.state.CurrentBankroll = staking.AddMoney(l.state.CurrentBankroll, wager.Profit)

	if err := l.store.Save(ctx, l.state); err != nil {
		*wager = before
		l.state.CurrentBankroll = bankrollBefore
		l.audit.LogPersistenceFailure("settle", key.String(), err)
		return false, fmt.Errorf("failed to persist settlement %s: %w", key, err)
	}

	l.audit.LogSettlement(wager.ID.String(), key.String(), string(wager.Result),
		wager.Profit, bankrollBefore, l.state.CurrentBankroll)
	return true, nil
}

// WinRateFor returns the win rate used to size a tier, and whether it came
// from settled wagers rather than the static table
func (l *Ledger) WinRateFor(sport models.Sport, tier models.Tier) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.winRateLocked(sport, tier)
}

func (l *Ledger) winRateLocked(sport models.Sport, tier models.Tier) (float64, bool) {
	var wins, total int
	for _, w := range l.state.Bets {
		if w.Sport != sport || w.Tier != tier || !w.IsSettled() {
			continue
		}
		total++
		if w.Result == models.WagerResultWon {
			wins++
		}
	}
	if total >= l.minLiveSample {
		return float64(wins) / float64(total) * 100, true
	}
	return l.tiers[sport][tier].HistoricalWinRate, false
}

// Get returns a copy of the wager for key
func (l *Ledger) Get(key models.WagerKey) (models.Wager, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.index[key]
	if !ok {
		return models.Wager{}, false
	}
	return *l.state.Bets[idx], true
}

// Pending returns copies of wagers still awaiting a result
func (l *Ledger) Pending() []models.Wager {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Wager
	for _, w := range l.state.Bets {
		if w.IsPending() {
			out = append(out, *w)
		}
	}
	return out
}

// Wagers returns copies of every wager in insertion order
func (l *Ledger) Wagers() []models.Wager {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Wager, len(l.state.Bets))
	for i, w := range l.state.Bets {
		out[i] = *w
	}
	return out
}

// Len returns the number of recorded wagers
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state.Bets)
}

// Bankroll returns the current and initial bankroll
func (l *Ledger) Bankroll() (current, initial float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.CurrentBankroll, l.state.InitialBankroll
}

// Snapshot returns a deep copy of the persisted state
func (l *Ledger) Snapshot() *models.LedgerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}
