package ledger

import (
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/staking"
)

// Summary aggregates settled wagers
type Summary struct {
	TotalBets   int     `json:"total_bets"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	TotalProfit float64 `json:"profit"`
	TotalStaked float64 `json:"total_staked"`
	ROI         float64 `json:"roi"`
}

func (s *Summary) add(w *models.Wager) {
	s.TotalBets++
	if w.Result == models.WagerResultWon {
		s.Wins++
	} else {
		s.Losses++
	}
	s.TotalProfit = staking.AddMoney(s.TotalProfit, w.Profit)
	s.TotalStaked = staking.AddMoney(s.TotalStaked, w.Stake)
}

func (s *Summary) finish() {
	if s.TotalBets > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalBets) * 100
	}
	if s.TotalStaked > 0 {
		s.ROI = s.TotalProfit / s.TotalStaked * 100
	}
}

// Summary aggregates settled wagers, optionally for one sport. An empty
// sport means every sport.
func (l *Ledger) Summary(sport models.Sport) Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s Summary
	for _, w := range l.state.Bets {
		if !w.IsSettled() || (sport != "" && w.Sport != sport) {
			continue
		}
		s.add(w)
	}
	s.finish()
	return s
}

// TierPerformance groups settled wagers by tier
func (l *Ledger) TierPerformance(sport models.Sport) map[models.Tier]Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[models.Tier]Summary)
	for _, w := range l.state.Bets {
		if !w.IsSettled() || (sport != "" && w.Sport != sport) {
			continue
		}
		s := out[w.Tier]
		s.add(w)
		out[w.Tier] = s
	}
	for tier, s := range out {
		s.finish()
		out[tier] = s
	}
	return out
}

// SportPerformance groups settled wagers by sport
func (l *Ledger) SportPerformance() map[models.Sport]Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[models.Sport]Summary)
	for _, w := range l.state.Bets {
		if !w.IsSettled() {
			continue
		}
		s := out[w.Sport]
		s.add(w)
		out[w.Sport] = s
	}
	for sport, s := range out {
		s.finish()
		out[sport] = s
	}
	return out
}
