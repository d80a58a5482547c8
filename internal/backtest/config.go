package backtest

import (
	"fmt"

	"github.com/yourusername/b2b-edge/internal/gamelog"
)

// Options controls how historical games are replayed and searched
type Options struct {
	BackToBack      gamelog.BackToBackDefinition
	FormWindow      int
	AllowAway       bool
	MinSample       int
	Workers         int
	InitialBankroll float64
	Odds            float64
	MaxBetPercent   float64
	MinBet          float64
}

// DefaultOptions mirrors the production engine settings
func DefaultOptions() Options {
	return Options{
		BackToBack:      gamelog.PlayedYesterday,
		FormWindow:      gamelog.DefaultFormWindow,
		AllowAway:       true,
		MinSample:       150,
		Workers:         4,
		InitialBankroll: 1000,
		Odds:            2.0,
		MaxBetPercent:   0.10,
		MinBet:          1.0,
	}
}

// Validate validates the replay and simulation parameters
func (o Options) Validate() error {
	if o.FormWindow <= 0 {
		return fmt.Errorf("form window must be positive")
	}
	if o.MinSample < 0 {
		return fmt.Errorf("min sample cannot be negative")
	}
	if o.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if o.InitialBankroll <= 0 {
		return fmt.Errorf("initial bankroll must be positive")
	}
	if o.Odds <= 1 {
		return fmt.Errorf("odds must be greater than 1.0")
	}
	if o.MaxBetPercent <= 0 || o.MaxBetPercent > 1 {
		return fmt.Errorf("max bet percent must be between 0 and 1")
	}
	if o.MinBet < 0 {
		return fmt.Errorf("min bet cannot be negative")
	}
	return nil
}
