package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yourusername/b2b-edge/internal/ledger"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// FormatScan renders a scan for the terminal: recommendations first, then
// every skipped back-to-back matchup with the reason it was passed over
func FormatScan(r *ScanResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s scan (%s)\n", r.Sport, r.Season, r.ScannedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Settled: %d  Upcoming games: %d\n\n", r.Settled, r.UpcomingGames)

	if len(r.Recommendations) == 0 {
		b.WriteString("No recommendations\n")
	} else {
		b.WriteString("Recommendations\n")
		for _, rec := range r.Recommendations {
			sig := rec.Signal
			fmt.Fprintf(&b, "  [%s] %s  %s over %s%s  (%s vs %s)  %s\n",
				sig.Decision.Tier, sig.Game.Date.Format(models.DateLayout), sig.Pick, sig.Opponent,
				standingSuffix(r, sig.Pick), sig.RestedForm.Record(), sig.B2BForm.Record(), sig.Decision.Reason)
			switch {
			case rec.Status == StatusPlaced && rec.Wager != nil:
				fmt.Fprintf(&b, "      stake $%.2f at %.2f (win rate %.1f%%)\n", rec.Wager.Stake, rec.Wager.Odds, rec.Wager.EdgePercent)
			case rec.Status == StatusDuplicate:
				b.WriteString("      already in ledger\n")
			case rec.Status == StatusZeroStake:
				b.WriteString("      stake rounds to zero, not recorded\n")
			}
			for _, adj := range sig.Decision.Adjustments {
				fmt.Fprintf(&b, "      adjustment: %s\n", adj)
			}
		}
	}

	if len(r.Skips) > 0 {
		b.WriteString("\nSkipped back-to-back matchups\n")
		for _, sig := range r.Skips {
			fmt.Fprintf(&b, "  %s  %s  %s\n", sig.Game.Date.Format(models.DateLayout), matchupLabel(sig), sig.Decision.Reason)
		}
	}
	return b.String()
}

func matchupLabel(sig strategy.Signal) string {
	label := fmt.Sprintf("%s @ %s", sig.Game.AwayTeam, sig.Game.HomeTeam)
	if sig.Pick != "" {
		label += fmt.Sprintf(" (rested %s %s, b2b %s)", sig.Pick, sig.RestedForm.Record(), sig.B2BForm.Record())
	}
	return label
}

func standingSuffix(r *ScanResult, team string) string {
	s, ok := r.Standings[team]
	if !ok {
		return ""
	}
	return fmt.Sprintf(" (#%d, %d pts)", s.Rank, s.Points)
}

// FormatSummary renders overall, per-tier and per-sport ledger performance
func FormatSummary(book *ledger.Ledger, sport models.Sport) string {
	var b strings.Builder
	current, initial := book.Bankroll()
	overall := book.Summary(sport)

	b.WriteString("Ledger Summary\n")
	b.WriteString("==============\n")
	fmt.Fprintf(&b, "Bankroll: $%.2f (started $%.2f)\n", current, initial)
	fmt.Fprintf(&b, "Pending: %d\n", len(book.Pending()))
	writeSummaryLine(&b, "Overall", overall)

	tiers := book.TierPerformance(sport)
	if len(tiers) > 0 {
		b.WriteString("\nBy tier\n")
		keys := make([]models.Tier, 0, len(tiers))
		for t := range tiers {
			keys = append(keys, t)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Rank() > keys[j].Rank() })
		for _, t := range keys {
			writeSummaryLine(&b, "Tier "+string(t), tiers[t])
		}
	}

	if sport == "" {
		sports := book.SportPerformance()
		if len(sports) > 0 {
			b.WriteString("\nBy sport\n")
			keys := make([]string, 0, len(sports))
			for s := range sports {
				keys = append(keys, string(s))
			}
			sort.Strings(keys)
			for _, s := range keys {
				writeSummaryLine(&b, s, sports[models.Sport(s)])
			}
		}
	}
	return b.String()
}

func writeSummaryLine(b *strings.Builder, label string, s ledger.Summary) {
	fmt.Fprintf(b, "  %-8s %d-%d (%.1f%%)  profit $%.2f  ROI %.1f%%\n",
		label, s.Wins, s.Losses, s.WinRate, s.TotalProfit, s.ROI)
}
