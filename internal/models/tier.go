package models

import (
	"fmt"
	"strings"
)

// Tier is a confidence bucket for a matchup. S is the strongest.
type Tier string

const (
	TierS    Tier = "S"
	TierA    Tier = "A"
	TierB    Tier = "B"
	TierNone Tier = "NONE"
)

// BettableTiers lists the tiers that produce wagers, strongest first
var BettableTiers = []Tier{TierS, TierA, TierB}

// Rank orders tiers so that S > A > B > None
func (t Tier) Rank() int {
	switch t {
	case TierS:
		return 3
	case TierA:
		return 2
	case TierB:
		return 1
	default:
		return 0
	}
}

// IsBettable reports whether the tier produces a wager
func (t Tier) IsBettable() bool {
	return t.Rank() > 0
}

// ParseTier converts a label such as "S" or "tier a" into a Tier
func ParseTier(s string) (Tier, error) {
	normalized := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "tier")))
	switch normalized {
	case "S":
		return TierS, nil
	case "A":
		return TierA, nil
	case "B":
		return TierB, nil
	case "NONE", "":
		return TierNone, nil
	default:
		return TierNone, fmt.Errorf("unknown tier %q", s)
	}
}

// TierInfo describes a tier and the static win rate it was calibrated on
type TierInfo struct {
	Name              Tier    `mapstructure:"name" json:"name" validate:"required,oneof=S A B"`
	Criteria          string  `mapstructure:"criteria" json:"criteria"`
	HistoricalWinRate float64 `mapstructure:"historical_win_rate" json:"historical_win_rate" validate:"gt=0,lte=100"`
	SampleSize        int     `mapstructure:"sample_size" json:"sample_size" validate:"gte=0"`
}
