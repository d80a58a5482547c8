package strategy

import (
	"fmt"

	"github.com/yourusername/b2b-edge/internal/models"
)

// Skip reasons surfaced for matchups that do not produce a wager
const (
	ReasonNoRestAdvantage       = "no rest advantage"
	ReasonFormBelowThreshold    = "rested team form below threshold"
	ReasonInsufficientAdvantage = "insufficient form advantage"
	ReasonAwayNotEligible       = "away rest advantage not eligible"
	ReasonRestedInjuries        = "rested team has 2+ significant injuries"
)

// Decision is the outcome of classifying one matchup
type Decision struct {
	Tier          models.Tier `json:"tier"`
	BaseTier      models.Tier `json:"base_tier"`
	Reason        string      `json:"reason"`
	FormAdvantage int         `json:"form_advantage"`
	RestedWins    int         `json:"rested_wins"`
	B2BWins       int         `json:"b2b_wins"`
	Adjustments   []string    `json:"adjustments,omitempty"`
}

// Bettable reports whether the decision produces a wager
func (d Decision) Bettable() bool {
	return d.Tier.IsBettable()
}

// Classifier assigns tiers from recent form. It holds no mutable state.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier validates the thresholds and returns a classifier bound to them
func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return &Classifier{thresholds: t}, nil
}

// Thresholds returns a copy of the classifier's thresholds
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify assigns a tier to a rested team facing a back-to-back team
func (c *Classifier) Classify(restedWins, b2bWins int, isRestedHome bool) Decision {
	t := c.thresholds
	adv := restedWins - b2bWins
	d := Decision{
		Tier:          models.TierNone,
		FormAdvantage: adv,
		RestedWins:    restedWins,
		B2BWins:       b2bWins,
	}

	if !isRestedHome && !t.AllowAwayAdvantage {
		d.Reason = ReasonAwayNotEligible
		d.BaseTier = d.Tier
		return d
	}

	inBand := restedWins >= t.GoodFormMinWins && restedWins <= t.GoodFormMaxWins
	switch {
	case inBand && adv >= t.MinAdvantageS:
		d.Tier = models.TierS
	case inBand && adv >= t.MinAdvantageA:
		d.Tier = models.TierA
	case t.EnableTierB && adv >= t.MinAdvantageB:
		d.Tier = models.TierB
	case !inBand:
		d.Reason = ReasonFormBelowThreshold
	default:
		d.Reason = ReasonInsufficientAdvantage
	}

	if d.Tier.IsBettable() {
		d.Reason = t.Criteria(d.Tier)
	}
	d.BaseTier = d.Tier
	return d
}
