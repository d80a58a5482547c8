package backtest

import (
	"math"
	"sort"

	"github.com/yourusername/b2b-edge/internal/models"
)

// TierStats summarises one tier's replayed results
type TierStats struct {
	Wins    int     `json:"wins" yaml:"wins"`
	Total   int     `json:"total" yaml:"total"`
	WinRate float64 `json:"win_rate" yaml:"win_rate"`
	StdErr  float64 `json:"std_err" yaml:"std_err"`
}

// Losses returns the number of losing games
func (s TierStats) Losses() int {
	return s.Total - s.Wins
}

// TierTable maps each tier to its stats
type TierTable map[models.Tier]TierStats

// TotalGames sums the sample over every tier
func (t TierTable) TotalGames() int {
	total := 0
	for _, s := range t {
		total += s.Total
	}
	return total
}

// MeanWinRate averages the win rate of the tiers that have samples
func (t TierTable) MeanWinRate() float64 {
	var rates []float64
	for _, s := range t {
		if s.Total > 0 {
			rates = append(rates, s.WinRate)
		}
	}
	return average(rates)
}

// Tiers returns the tiers present, best first
func (t TierTable) Tiers() []models.Tier {
	tiers := make([]models.Tier, 0, len(t))
	for tier := range t {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Rank() > tiers[j].Rank()
	})
	return tiers
}

// CalculateTierStats tallies bettable outcomes per tier
func CalculateTierStats(outcomes []Outcome) TierTable {
	table := make(TierTable)
	for _, o := range outcomes {
		if !o.Decision.Bettable() {
			continue
		}
		s := table[o.Decision.Tier]
		s.Total++
		if o.Won() {
			s.Wins++
		}
		table[o.Decision.Tier] = s
	}
	for tier, s := range table {
		s.WinRate = calculateWinRate(s.Wins, s.Total) * 100
		s.StdErr = binomialStdErr(s.Wins, s.Total) * 100
		table[tier] = s
	}
	return table
}

// binomialStdErr is sqrt(p(1-p)/n); advisory only
func binomialStdErr(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(wins) / float64(total)
	return math.Sqrt(p * (1 - p) / float64(total))
}

// calculateSharpeRatio is the per-bet mean over sample standard deviation
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	std := sampleStddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std
}

func calculateMaxDrawdown(curve EquityCurve) float64 {
	maxDD := 0.0
	peak := 0.0
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if peak == 0 {
			continue
		}
		drawdown := (peak - p.Value) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
