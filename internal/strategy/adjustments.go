package strategy

import (
	"context"

	"github.com/yourusername/b2b-edge/internal/models"
)

// InjurySkipThreshold is the number of significant rested-team injuries that forces a skip
const InjurySkipThreshold = 2

// Adjustment labels recorded on a decision
const (
	AdjustmentB2BBackupStarter    = "b2b team using backup starter"
	AdjustmentUpgradeAToS         = "upgraded A to S"
	AdjustmentRestedInjuries      = "rested team injuries forced skip"
	AdjustmentRestedBackupStarter = "rested team using backup starter"
)

// LineupSignals carries auxiliary lineup information for one matchup
type LineupSignals struct {
	B2BBackupStarter    bool `json:"b2b_backup_starter"`
	RestedBackupStarter bool `json:"rested_backup_starter"`
	RestedInjuries      int  `json:"rested_injuries"`
}

// LineupProvider supplies lineup signals for the rested and back-to-back sides
type LineupProvider interface {
	LineupSignals(ctx context.Context, game models.GameRecord, restedTeam, b2bTeam string) (*LineupSignals, error)
}

// ApplyAdjustments runs after base classification. Non-bettable decisions
// and nil signals pass through untouched.
func ApplyAdjustments(d Decision, s *LineupSignals) Decision {
	if s == nil || !d.Bettable() {
		return d
	}

	adjusted := d
	adjusted.Adjustments = append([]string(nil), d.Adjustments...)

	if s.RestedInjuries >= InjurySkipThreshold {
		adjusted.Tier = models.TierNone
		adjusted.Reason = ReasonRestedInjuries
		adjusted.Adjustments = append(adjusted.Adjustments, AdjustmentRestedInjuries)
		return adjusted
	}

	if s.B2BBackupStarter {
		adjusted.Adjustments = append(adjusted.Adjustments, AdjustmentB2BBackupStarter)
		if adjusted.Tier == models.TierA {
			adjusted.Tier = models.TierS
			adjusted.Adjustments = append(adjusted.Adjustments, AdjustmentUpgradeAToS)
		}
	}

	if s.RestedBackupStarter {
		adjusted.Adjustments = append(adjusted.Adjustments, AdjustmentRestedBackupStarter)
	}

	return adjusted
}
