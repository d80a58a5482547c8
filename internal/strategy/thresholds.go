package strategy

import (
	"fmt"
	"sort"

	"github.com/yourusername/b2b-edge/internal/models"
)

// Named threshold presets
const (
	PresetCanonical          = "canonical"
	PresetNBAHome            = "nba_home"
	PresetLegacyThreeTier    = "legacy_three_tier"
	PresetOptimizedThreeTier = "optimized_three_tier"
)

// Thresholds parameterises the classifier. Values are copied into a
// Classifier and never mutated afterwards. Presets assume a five game form
// window; callers with a different window widen GoodFormMaxWins to match.
type Thresholds struct {
	GoodFormMinWins    int  `mapstructure:"good_form_min_wins" json:"good_form_min_wins" yaml:"good_form_min_wins"`
	GoodFormMaxWins    int  `mapstructure:"good_form_max_wins" json:"good_form_max_wins" yaml:"good_form_max_wins"`
	MinAdvantageS      int  `mapstructure:"min_advantage_s" json:"min_advantage_s" yaml:"min_advantage_s"`
	MinAdvantageA      int  `mapstructure:"min_advantage_a" json:"min_advantage_a" yaml:"min_advantage_a"`
	MinAdvantageB      int  `mapstructure:"min_advantage_b" json:"min_advantage_b" yaml:"min_advantage_b"`
	EnableTierB        bool `mapstructure:"enable_tier_b" json:"enable_tier_b" yaml:"enable_tier_b"`
	AllowAwayAdvantage bool `mapstructure:"allow_away_advantage" json:"allow_away_advantage" yaml:"allow_away_advantage"`
}

var presets = map[string]Thresholds{
	PresetCanonical: {
		GoodFormMinWins:    4,
		GoodFormMaxWins:    5,
		MinAdvantageS:      3,
		MinAdvantageA:      2,
		MinAdvantageB:      3,
		EnableTierB:        false,
		AllowAwayAdvantage: true,
	},
	PresetNBAHome: {
		GoodFormMinWins:    4,
		GoodFormMaxWins:    5,
		MinAdvantageS:      2,
		MinAdvantageA:      1,
		MinAdvantageB:      2,
		EnableTierB:        true,
		AllowAwayAdvantage: false,
	},
	PresetLegacyThreeTier: {
		GoodFormMinWins:    4,
		GoodFormMaxWins:    5,
		MinAdvantageS:      2,
		MinAdvantageA:      1,
		MinAdvantageB:      2,
		EnableTierB:        true,
		AllowAwayAdvantage: true,
	},
	PresetOptimizedThreeTier: {
		GoodFormMinWins:    4,
		GoodFormMaxWins:    5,
		MinAdvantageS:      3,
		MinAdvantageA:      2,
		MinAdvantageB:      3,
		EnableTierB:        true,
		AllowAwayAdvantage: true,
	},
}

// Canonical returns the two-tier production thresholds
func Canonical() Thresholds {
	return presets[PresetCanonical]
}

// Preset looks up a named threshold set
func Preset(name string) (Thresholds, error) {
	t, ok := presets[name]
	if !ok {
		return Thresholds{}, fmt.Errorf("unknown threshold preset %q", name)
	}
	return t, nil
}

// PresetNames lists the known presets in alphabetical order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsPreset reports whether name is a known preset
func IsPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// Validate checks that the thresholds describe an ordered tier ladder
func (t Thresholds) Validate() error {
	if t.GoodFormMinWins < 0 || t.GoodFormMaxWins < t.GoodFormMinWins {
		return fmt.Errorf("good form band [%d,%d] is invalid", t.GoodFormMinWins, t.GoodFormMaxWins)
	}
	if t.MinAdvantageA < 1 {
		return fmt.Errorf("tier A advantage must be at least 1, got %d", t.MinAdvantageA)
	}
	if t.MinAdvantageA >= t.MinAdvantageS {
		return fmt.Errorf("tier A advantage %d must be below tier S advantage %d", t.MinAdvantageA, t.MinAdvantageS)
	}
	if t.EnableTierB && t.MinAdvantageB > t.MinAdvantageS {
		return fmt.Errorf("tier B advantage %d cannot exceed tier S advantage %d", t.MinAdvantageB, t.MinAdvantageS)
	}
	return nil
}

// Criteria describes the rule a tier was assigned by
func (t Thresholds) Criteria(tier models.Tier) string {
	switch tier {
	case models.TierS:
		return fmt.Sprintf("Rested %d-%d wins in L5 AND %d+ win advantage", t.GoodFormMinWins, t.GoodFormMaxWins, t.MinAdvantageS)
	case models.TierA:
		return fmt.Sprintf("Rested %d-%d wins in L5 AND %d+ win advantage", t.GoodFormMinWins, t.GoodFormMaxWins, t.MinAdvantageA)
	case models.TierB:
		return fmt.Sprintf("Form advantage >=%d (any form level)", t.MinAdvantageB)
	default:
		return ""
	}
}

// Parameters flattens the thresholds for logging and persistence
func (t Thresholds) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"good_form_min_wins":   t.GoodFormMinWins,
		"good_form_max_wins":   t.GoodFormMaxWins,
		"min_advantage_s":      t.MinAdvantageS,
		"min_advantage_a":      t.MinAdvantageA,
		"min_advantage_b":      t.MinAdvantageB,
		"enable_tier_b":        t.EnableTierB,
		"allow_away_advantage": t.AllowAwayAdvantage,
	}
}
