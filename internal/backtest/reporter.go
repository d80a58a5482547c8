package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// GenerateOptimizerReport formats ranked candidates for terminal output
func GenerateOptimizerReport(results []CandidateResult, top int) string {
	var builder strings.Builder
	builder.WriteString("Threshold Optimization Report\n")
	builder.WriteString("=============================\n")
	if len(results) == 0 {
		builder.WriteString("No configuration met the minimum sample\n")
		return builder.String()
	}
	if top <= 0 || top > len(results) {
		top = len(results)
	}
	for i, r := range results[:top] {
		t := r.Thresholds
		builder.WriteString(fmt.Sprintf("#%d  rested>=%d  S>=%d  A>=%d  B>=%d  games=%d  mean=%.1f%%\n",
			i+1, t.GoodFormMinWins, t.MinAdvantageS, t.MinAdvantageA, t.MinAdvantageB, r.TotalGames, r.MeanWinRate))
		for _, tier := range r.Overall.Tiers() {
			s := r.Overall[tier]
			builder.WriteString(fmt.Sprintf("    Tier %s: %d-%d (%.1f%% +/- %.1f%%)\n", tier, s.Wins, s.Losses(), s.WinRate, s.StdErr))
		}
	}
	return builder.String()
}

// GenerateSeasonReport formats the per-season breakdown of one candidate
func GenerateSeasonReport(r CandidateResult, seasons []string) string {
	var builder strings.Builder
	builder.WriteString("Season Breakdown\n")
	builder.WriteString("================\n")
	for _, season := range seasons {
		table, ok := r.BySeason[season]
		if !ok {
			continue
		}
		builder.WriteString(season + "\n")
		for _, tier := range table.Tiers() {
			s := table[tier]
			builder.WriteString(fmt.Sprintf("    Tier %s: %d-%d (%.1f%%)\n", tier, s.Wins, s.Losses(), s.WinRate))
		}
	}
	return builder.String()
}

// GenerateKellyReport formats a tier's Kelly fraction comparison
func GenerateKellyReport(a TierAnalysis) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Kelly Analysis - Tier %s\n", a.Tier))
	builder.WriteString("========================\n")
	builder.WriteString(fmt.Sprintf("Games: %d  Win rate: %.1f%%\n", a.Games, a.WinRate))
	for _, r := range a.Results {
		builder.WriteString(fmt.Sprintf("Kelly %3.0f%%: final $%.2f  ROI %.1f%%  max DD %.1f%%  sharpe %.2f  bets %d\n",
			r.Fraction*100, r.FinalBankroll, r.ROI*100, r.MaxDrawdownPct*100, r.SharpeRatio, r.TotalBets))
	}
	builder.WriteString(fmt.Sprintf("Recommendation: %.0f%% Kelly\n", a.Recommended*100))
	return builder.String()
}

// GenerateBaselineReport formats the baseline and team back-to-back tables
func GenerateBaselineReport(b Baseline, teams []TeamB2BRecord) string {
	var builder strings.Builder
	builder.WriteString("Rest Baseline\n")
	builder.WriteString("=============\n")
	builder.WriteString(fmt.Sprintf("Rested team won %d of %d (%.1f%%)\n", b.RestedWins, b.Games, b.RestedWinRate))
	builder.WriteString(fmt.Sprintf("  home rested: %d of %d (%.1f%%)\n", b.HomeRestedWins, b.HomeRested, b.HomeWinRate))
	builder.WriteString(fmt.Sprintf("  away rested: %d of %d (%.1f%%)\n", b.AwayRestedWins, b.AwayRested, b.AwayWinRate))
	if len(teams) > 0 {
		builder.WriteString("Team records on back-to-backs\n")
		for _, t := range teams {
			builder.WriteString(fmt.Sprintf("  %-4s %d-%d (%.1f%%)\n", t.Team, t.Wins, t.Games-t.Wins, t.WinRate))
		}
	}
	return builder.String()
}

// ThresholdExport is the YAML document written for a chosen threshold set
type ThresholdExport struct {
	Thresholds  strategy.Thresholds  `yaml:"thresholds"`
	TotalGames  int                  `yaml:"total_games"`
	MeanWinRate float64              `yaml:"mean_win_rate"`
	Tiers       map[string]TierStats `yaml:"tiers"`
}

// ExportThresholds writes a candidate as YAML. Its thresholds block reads back
// as an engine or sport thresholds section.
func ExportThresholds(r CandidateResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	doc := ThresholdExport{
		Thresholds:  r.Thresholds,
		TotalGames:  r.TotalGames,
		MeanWinRate: r.MeanWinRate,
		Tiers:       make(map[string]TierStats, len(r.Overall)),
	}
	for tier, s := range r.Overall {
		doc.Tiers[string(tier)] = s
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal thresholds: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// NewOptimizationRun packages a candidate for persistence
func NewOptimizationRun(sport models.Sport, seasons []string, r CandidateResult, now time.Time) (*models.OptimizationRun, error) {
	thresholds, err := json.Marshal(r.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thresholds: %w", err)
	}
	tiers, err := json.Marshal(r.Overall)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tier stats: %w", err)
	}
	return &models.OptimizationRun{
		ID:          uuid.New(),
		Sport:       sport,
		Seasons:     append([]string(nil), seasons...),
		Thresholds:  thresholds,
		TotalGames:  r.TotalGames,
		MeanWinRate: r.MeanWinRate,
		TierStats:   tiers,
		CreatedAt:   now,
	}, nil
}
