// Package backtest replays completed seasons through the rest and form
// classifier, searches threshold grids and validates Kelly fractions.
package backtest

import (
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/strategy"
)

// ReplayedGame is a completed game where exactly one side was on a back-to-back
type ReplayedGame struct {
	Matchup    gamelog.Matchup       `json:"matchup"`
	Season     string                `json:"season"`
	Advantage  gamelog.RestAdvantage `json:"rest_advantage"`
	RestedTeam string                `json:"rested_team"`
	B2BTeam    string                `json:"b2b_team"`
	RestedHome bool                  `json:"rested_home"`
	RestedWon  bool                  `json:"rested_won"`
	RestedWins int                   `json:"rested_wins"`
	B2BWins    int                   `json:"b2b_wins"`
}

// Outcome is a replayed game with the classifier's decision attached
type Outcome struct {
	Game     ReplayedGame      `json:"game"`
	Decision strategy.Decision `json:"decision"`
}

// Won reports whether the rested side won
func (o Outcome) Won() bool {
	return o.Game.RestedWon
}

// Candidates replays every season of the log and keeps the games with a
// one-sided back-to-back. Rest and form never cross a season boundary. Games
// without a season label replay together as one extra unlabelled season.
func Candidates(l *gamelog.Log, def gamelog.BackToBackDefinition, formWindow int) []ReplayedGame {
	var out []ReplayedGame
	for _, season := range l.Seasons() {
		out = collect(l.Season(season), season, def, formWindow, out)
	}
	if unlabelled := l.Season(""); unlabelled.Len() > 0 {
		out = collect(unlabelled, "", def, formWindow, out)
	}
	return out
}

func collect(l *gamelog.Log, season string, def gamelog.BackToBackDefinition, formWindow int, out []ReplayedGame) []ReplayedGame {
	gamelog.Replay(l, def, formWindow, func(m gamelog.Matchup) {
		if !m.HasRestAdvantage() {
			return
		}
		rg := ReplayedGame{
			Matchup:   m,
			Season:    season,
			Advantage: m.Advantage(),
		}
		if m.AwayB2B {
			rg.RestedTeam, rg.B2BTeam = m.Game.HomeTeam, m.Game.AwayTeam
			rg.RestedHome = true
			rg.RestedWins, rg.B2BWins = m.HomeForm.Wins, m.AwayForm.Wins
		} else {
			rg.RestedTeam, rg.B2BTeam = m.Game.AwayTeam, m.Game.HomeTeam
			rg.RestedWins, rg.B2BWins = m.AwayForm.Wins, m.HomeForm.Wins
		}
		rg.RestedWon = m.Game.WonBy(rg.RestedTeam)
		out = append(out, rg)
	})
	return out
}

// Replay classifies every one-sided back-to-back game in the log
func Replay(l *gamelog.Log, classifier *strategy.Classifier, opts Options) []Outcome {
	return Classify(Candidates(l, opts.BackToBack, opts.FormWindow), classifier)
}

// Classify runs a classifier over already replayed games
func Classify(games []ReplayedGame, classifier *strategy.Classifier) []Outcome {
	out := make([]Outcome, 0, len(games))
	for _, g := range games {
		out = append(out, Outcome{
			Game:     g,
			Decision: classifier.Classify(g.RestedWins, g.B2BWins, g.RestedHome),
		})
	}
	return out
}

// ByTier groups bettable outcomes by tier
func ByTier(outcomes []Outcome) map[models.Tier][]Outcome {
	out := make(map[models.Tier][]Outcome)
	for _, o := range outcomes {
		if !o.Decision.Bettable() {
			continue
		}
		out[o.Decision.Tier] = append(out[o.Decision.Tier], o)
	}
	return out
}
