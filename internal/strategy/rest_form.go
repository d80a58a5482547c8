package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/models"
)

// RestFormStrategy bets rested teams against opponents on a back-to-back
// when the rested side also carries the stronger recent form.
type RestFormStrategy struct {
	BaseStrategy
	NameValue  string
	PresetName string
	classifier *Classifier
	tiers      map[models.Tier]models.TierInfo
	lineups    LineupProvider
	log        *logger.ClassifierLogger
}

// NewRestFormStrategy creates a strategy for one sport's tier table
func NewRestFormStrategy(preset string, classifier *Classifier, tiers []models.TierInfo, defaultOdds float64, lineups LineupProvider, log *logrus.Logger) *RestFormStrategy {
	table := make(map[models.Tier]models.TierInfo, len(tiers))
	for _, info := range tiers {
		table[info.Name] = info
	}
	if defaultOdds <= 1 {
		defaultOdds = 2.0
	}
	return &RestFormStrategy{
		BaseStrategy: BaseStrategy{
			MinOdds:     1.01,
			MaxOdds:     1000,
			DefaultOdds: defaultOdds,
		},
		NameValue:  "rest_form",
		PresetName: preset,
		classifier: classifier,
		tiers:      table,
		lineups:    lineups,
		log:        logger.NewClassifierLogger(logger.OrDiscard(log)),
	}
}

// Name returns strategy name
func (s *RestFormStrategy) Name() string {
	return s.NameValue
}

// Evaluate classifies every back-to-back matchup. Matchups where neither
// side is on a back-to-back produce no signal.
func (s *RestFormStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	start := time.Now()
	if err := s.ValidateTemporalSafety(strategyCtx.CurrentTime, strategyCtx.Matchups); err != nil {
		return nil, err
	}

	var signals []Signal
	bets, skips := 0, 0
	for _, m := range strategyCtx.Matchups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !m.HomeB2B && !m.AwayB2B {
			continue
		}

		signal := s.evaluateMatchup(ctx, m)
		if s.ShouldBet(signal) {
			bets++
			s.log.LogDecision(m.Game.String(), signal.Pick, string(signal.Decision.Tier),
				signal.Decision.RestedWins, signal.Decision.B2BWins, signal.Decision.FormAdvantage, signal.WinRate)
		} else {
			skips++
			s.log.LogSkip(m.Game.String(), signal.Decision.Reason)
		}
		signals = append(signals, signal)
	}

	s.log.LogEvaluation(string(strategyCtx.Sport), s.PresetName, len(strategyCtx.Matchups), bets, skips,
		float64(time.Since(start).Microseconds())/1000)
	return signals, nil
}

func (s *RestFormStrategy) evaluateMatchup(ctx context.Context, m gamelog.Matchup) Signal {
	signal := Signal{
		Game:     m.Game,
		HomeRest: m.HomeRest,
		AwayRest: m.AwayRest,
		Odds:     s.DefaultOdds,
	}

	if !m.HasRestAdvantage() {
		signal.Decision = Decision{Tier: models.TierNone, BaseTier: models.TierNone, Reason: ReasonNoRestAdvantage}
		return signal
	}

	rested, b2b := m.Game.HomeTeam, m.Game.AwayTeam
	restedForm, b2bForm := m.HomeForm, m.AwayForm
	isRestedHome := !m.HomeB2B
	if !isRestedHome {
		rested, b2b = b2b, rested
		restedForm, b2bForm = b2bForm, restedForm
	}

	signal.Pick = rested
	signal.Opponent = b2b
	signal.PickIsHome = isRestedHome
	signal.RestedForm = restedForm
	signal.B2BForm = b2bForm

	decision := s.classifier.Classify(restedForm.Wins, b2bForm.Wins, isRestedHome)
	if decision.Bettable() && s.lineups != nil {
		lineup, err := s.lineups.LineupSignals(ctx, m.Game, rested, b2b)
		if err != nil {
			s.log.WithError(err).WithField("game", m.Game.String()).Warn("Lineup signals unavailable, using base classification")
		} else {
			signal.Lineup = lineup
			adjusted := ApplyAdjustments(decision, lineup)
			if len(adjusted.Adjustments) > 0 {
				s.log.LogAdjustments(m.Game.String(), string(decision.Tier), string(adjusted.Tier), adjusted.Adjustments)
			}
			if adjusted.Tier != decision.Tier && adjusted.Tier.IsBettable() {
				adjusted.Reason = fmt.Sprintf("%s (%s)", s.classifier.Thresholds().Criteria(decision.Tier), AdjustmentUpgradeAToS)
			}
			decision = adjusted
		}
	}

	signal.Decision = decision
	if info, ok := s.tiers[decision.Tier]; ok {
		signal.WinRate = info.HistoricalWinRate
		signal.ExpectedValue = s.CalculateExpectedValue(info.HistoricalWinRate/100, signal.Odds)
	}
	return signal
}

// ShouldBet checks the signal carries a bettable tier with a configured win rate
func (s *RestFormStrategy) ShouldBet(signal Signal) bool {
	if !signal.Decision.Bettable() || signal.Pick == "" {
		return false
	}
	_, ok := s.tiers[signal.Decision.Tier]
	return ok && s.ValidateOdds(signal.Odds) == nil
}

// GetParameters returns the active thresholds
func (s *RestFormStrategy) GetParameters() map[string]interface{} {
	params := s.classifier.Thresholds().Parameters()
	params["preset"] = s.PresetName
	params["default_odds"] = s.DefaultOdds
	return params
}

// TierInfo returns the configured tier entry
func (s *RestFormStrategy) TierInfo(tier models.Tier) (models.TierInfo, bool) {
	info, ok := s.tiers[tier]
	return info, ok
}
