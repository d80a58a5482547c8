package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
)

// BaseStrategy provides shared functionality for strategies
type BaseStrategy struct {
	MinOdds     float64
	MaxOdds     float64
	DefaultOdds float64
}

// ValidateOdds ensures odds are within acceptable bounds
func (b *BaseStrategy) ValidateOdds(odds float64) error {
	if odds <= 1.0 {
		return fmt.Errorf("odds must be greater than 1.0")
	}
	if b.MinOdds > 0 && odds < b.MinOdds {
		return fmt.Errorf("odds below minimum")
	}
	if b.MaxOdds > 0 && odds > b.MaxOdds {
		return fmt.Errorf("odds above maximum")
	}
	return nil
}

// CalculateExpectedValue returns expected profit per unit staked
func (b *BaseStrategy) CalculateExpectedValue(probability float64, odds float64) float64 {
	if probability <= 0 || odds <= 1 {
		return 0
	}
	return probability*(odds-1.0) - (1.0 - probability)
}

// ValidateTemporalSafety ensures no matchup is dated before the evaluation time
func (b *BaseStrategy) ValidateTemporalSafety(currentTime time.Time, matchups []gamelog.Matchup) error {
	if currentTime.IsZero() {
		return nil
	}
	today := models.DateOnly(currentTime)
	for _, m := range matchups {
		if m.Game.Completed {
			return fmt.Errorf("temporal safety violation: %s is already completed", m.Game)
		}
		if m.Game.Date.Before(today) {
			return fmt.Errorf("temporal safety violation: %s is before %s", m.Game, today.Format(models.DateLayout))
		}
	}
	return nil
}

// NormalizeProbability ensures probability in [0,1]
func (b *BaseStrategy) NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
