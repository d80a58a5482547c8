package backtest

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/staking"
)

// DefaultKellyFractions are the fractions compared by default
var DefaultKellyFractions = []float64{0.10, 0.25, 0.50, 0.75, 1.00}

// KellyResult is the outcome of betting one Kelly fraction over a sequence
type KellyResult struct {
	Fraction       float64     `json:"fraction"`
	FinalBankroll  float64     `json:"final_bankroll"`
	ROI            float64     `json:"roi"`
	MaxDrawdownPct float64     `json:"max_drawdown_pct"`
	SharpeRatio    float64     `json:"sharpe_ratio"`
	TotalBets      int         `json:"total_bets"`
	Bankrupt       bool        `json:"bankrupt"`
	EquityCurve    EquityCurve `json:"-"`
}

// Score weighs ROI 60%, Sharpe/10 20% and (1 - drawdown) 20%
func (r KellyResult) Score() float64 {
	return 0.6*r.ROI + 0.2*r.SharpeRatio/10 + 0.2*(1-r.MaxDrawdownPct)
}

// KellyValidator simulates fractional Kelly staking over replayed outcomes
type KellyValidator struct {
	opts   Options
	sizer  *staking.Sizer
	logger *logger.OptimizerLogger
}

// NewKellyValidator creates a validator. The sizer supplies the clamped full Kelly.
func NewKellyValidator(opts Options, sizer *staking.Sizer, log *logrus.Logger) (*KellyValidator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kelly options: %w", err)
	}
	if sizer == nil {
		return nil, fmt.Errorf("sizer is required")
	}
	return &KellyValidator{
		opts:   opts,
		sizer:  sizer,
		logger: logger.NewOptimizerLogger(logger.OrDiscard(log)),
	}, nil
}

// Simulate bets one fraction of full Kelly on every outcome in order.
// Stakes are capped at MaxBetPercent of the bankroll; stakes under MinBet are
// skipped and the run stops if the bankroll is exhausted.
func (kv *KellyValidator) Simulate(outcomes []bool, winRatePct, fraction float64) KellyResult {
	full := math.Max(0, kv.sizer.FullKelly(winRatePct, kv.opts.Odds))
	betPct := math.Min(full*fraction, kv.opts.MaxBetPercent)

	state := newSimulationState(kv.opts.InitialBankroll)
	bankrupt := false
	for _, won := range outcomes {
		stake := state.CurrentBankroll * betPct
		if stake < kv.opts.MinBet || stake <= 0 {
			continue
		}
		profit := -stake
		if won {
			profit = stake * (kv.opts.Odds - 1)
		}
		state.settle(stake, profit)
		if state.CurrentBankroll <= 0 {
			bankrupt = true
			break
		}
	}

	res := KellyResult{
		Fraction:       fraction,
		FinalBankroll:  staking.RoundMoney(state.CurrentBankroll),
		ROI:            (state.CurrentBankroll - kv.opts.InitialBankroll) / kv.opts.InitialBankroll,
		MaxDrawdownPct: calculateMaxDrawdown(state.EquityCurve),
		SharpeRatio:    calculateSharpeRatio(state.Returns),
		TotalBets:      state.bets(),
		Bankrupt:       bankrupt,
		EquityCurve:    state.EquityCurve,
	}
	kv.logger.LogKellyFraction(res.Fraction, res.FinalBankroll, res.ROI, res.MaxDrawdownPct, res.SharpeRatio, res.Bankrupt)
	return res
}

// SimulateFractions runs Simulate for every fraction, in the order given
func (kv *KellyValidator) SimulateFractions(outcomes []bool, winRatePct float64, fractions []float64) []KellyResult {
	if len(fractions) == 0 {
		fractions = DefaultKellyFractions
	}
	results := make([]KellyResult, 0, len(fractions))
	for _, f := range fractions {
		results = append(results, kv.Simulate(outcomes, winRatePct, f))
	}
	return results
}

// RecommendFraction picks the highest scoring fraction that kept a positive
// bankroll. The first result wins ties. ok is false when none survived.
func RecommendFraction(results []KellyResult) (best KellyResult, ok bool) {
	for _, r := range results {
		if r.FinalBankroll <= 0 || r.Bankrupt {
			continue
		}
		if !ok || r.Score() > best.Score() {
			best = r
			ok = true
		}
	}
	return best, ok
}

// TierAnalysis is the Kelly comparison for one tier's replayed games
type TierAnalysis struct {
	Tier        models.Tier   `json:"tier"`
	Games       int           `json:"games"`
	WinRate     float64       `json:"win_rate"`
	Results     []KellyResult `json:"results"`
	Recommended float64       `json:"recommended_fraction"`
}

// AnalyzeTier simulates the fractions over the tier's outcomes using the
// tier's realised win rate
func (kv *KellyValidator) AnalyzeTier(outcomes []Outcome, tier models.Tier, fractions []float64) TierAnalysis {
	results := TierResults(outcomes, tier)
	wins := 0
	for _, won := range results {
		if won {
			wins++
		}
	}
	winRate := calculateWinRate(wins, len(results)) * 100

	analysis := TierAnalysis{
		Tier:    tier,
		Games:   len(results),
		WinRate: winRate,
		Results: kv.SimulateFractions(results, winRate, fractions),
	}
	if best, ok := RecommendFraction(analysis.Results); ok {
		analysis.Recommended = best.Fraction
	}
	return analysis
}

// TierResults returns the win/loss sequence of one tier in replay order
func TierResults(outcomes []Outcome, tier models.Tier) []bool {
	var out []bool
	for _, o := range outcomes {
		if o.Decision.Tier == tier {
			out = append(out, o.Won())
		}
	}
	return out
}
