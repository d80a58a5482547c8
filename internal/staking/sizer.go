// Package staking sizes wagers with fractional Kelly under a hard cap.
package staking

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/b2b-edge/internal/logger"
)

// Defaults used when a Config field is left at zero
const (
	DefaultKellyFraction     = 0.25
	DefaultMaxStake          = 1000.0
	DefaultWinRateCeiling    = 85.0
	DefaultOdds              = 2.0
	moneyPrecision     int32 = 2
)

// Config holds the sizing parameters
type Config struct {
	KellyFraction  float64
	MaxStake       float64
	WinRateCeiling float64
}

// DefaultConfig returns the quarter-Kelly, $1,000 cap, 85% ceiling setup
func DefaultConfig() Config {
	return Config{
		KellyFraction:  DefaultKellyFraction,
		MaxStake:       DefaultMaxStake,
		WinRateCeiling: DefaultWinRateCeiling,
	}
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	if c.KellyFraction <= 0 || c.KellyFraction > 1 {
		return fmt.Errorf("kelly fraction must be in (0,1], got %v", c.KellyFraction)
	}
	if c.MaxStake <= 0 {
		return fmt.Errorf("max stake must be positive, got %v", c.MaxStake)
	}
	if c.WinRateCeiling <= 0 || c.WinRateCeiling > 100 {
		return fmt.Errorf("win rate ceiling must be in (0,100], got %v", c.WinRateCeiling)
	}
	return nil
}

// Sizer converts a win rate and odds into a stake
type Sizer struct {
	config Config
	logger *logrus.Logger
}

// NewSizer creates a sizer, rejecting invalid configuration
func NewSizer(cfg Config, log *logrus.Logger) (*Sizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sizer{config: cfg, logger: logger.OrDiscard(log)}, nil
}

// Config returns the sizer's configuration
func (s *Sizer) Config() Config {
	return s.config
}

// FullKelly returns (b*p - q) / b after clamping the win rate
func (s *Sizer) FullKelly(winRatePct, odds float64) float64 {
	if odds <= 1 {
		return 0
	}
	if winRatePct > s.config.WinRateCeiling {
		winRatePct = s.config.WinRateCeiling
	}
	p := winRatePct / 100.0
	q := 1.0 - p
	b := odds - 1.0
	return (b*p - q) / b
}

// Size returns the stake in currency units, rounded to cents.
// Zero means do not bet.
func (s *Sizer) Size(winRatePct, odds, bankroll float64) float64 {
	if bankroll <= 0 || odds <= 1 {
		return 0
	}

	fullKelly := s.FullKelly(winRatePct, odds)
	fractional := fullKelly * s.config.KellyFraction

	stake := bankroll * fractional
	if stake <= 0 {
		s.logger.WithFields(logrus.Fields{
			"win_rate": winRatePct,
			"odds":     odds,
			"kelly":    fullKelly,
		}).Debug("Negative Kelly fraction, no bet recommended")
		return 0
	}

	if stake > s.config.MaxStake {
		s.logger.WithFields(logrus.Fields{
			"calculated": stake,
			"max_stake":  s.config.MaxStake,
		}).Debug("Stake capped at maximum")
		stake = s.config.MaxStake
	}

	return RoundMoney(stake)
}

// RoundMoney rounds half away from zero to two decimal places
func RoundMoney(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(moneyPrecision).Float64()
	return rounded
}

// Profit returns the settled profit for a stake at decimal odds
func Profit(stake, odds float64, won bool) float64 {
	s := decimal.NewFromFloat(stake)
	if !won {
		p, _ := s.Neg().Round(moneyPrecision).Float64()
		return p
	}
	p, _ := s.Mul(decimal.NewFromFloat(odds).Sub(decimal.NewFromInt(1))).Round(moneyPrecision).Float64()
	return p
}

// AddMoney sums currency amounts without float drift
func AddMoney(a, b float64) float64 {
	sum, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(moneyPrecision).Float64()
	return sum
}
