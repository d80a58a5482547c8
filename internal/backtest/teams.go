package backtest

import (
	"sort"
)

// TeamB2BRecord is how a team fared when it played on a back-to-back
type TeamB2BRecord struct {
	Team    string  `json:"team"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// TeamB2BPerformance tallies each team's results on back-to-backs, worst first
func TeamB2BPerformance(games []ReplayedGame) []TeamB2BRecord {
	byTeam := make(map[string]*TeamB2BRecord)
	for _, g := range games {
		rec, ok := byTeam[g.B2BTeam]
		if !ok {
			rec = &TeamB2BRecord{Team: g.B2BTeam}
			byTeam[g.B2BTeam] = rec
		}
		rec.Games++
		if !g.RestedWon {
			rec.Wins++
		}
	}

	out := make([]TeamB2BRecord, 0, len(byTeam))
	for _, rec := range byTeam {
		rec.WinRate = calculateWinRate(rec.Wins, rec.Games) * 100
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate < out[j].WinRate
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// Baseline is the unfiltered rested-versus-back-to-back record
type Baseline struct {
	Games          int     `json:"games"`
	RestedWins     int     `json:"rested_wins"`
	RestedWinRate  float64 `json:"rested_win_rate"`
	HomeRested     int     `json:"home_rested"`
	HomeRestedWins int     `json:"home_rested_wins"`
	HomeWinRate    float64 `json:"home_rested_win_rate"`
	AwayRested     int     `json:"away_rested"`
	AwayRestedWins int     `json:"away_rested_wins"`
	AwayWinRate    float64 `json:"away_rested_win_rate"`
}

// CalculateBaseline measures how often the rested side won before any form filter
func CalculateBaseline(games []ReplayedGame) Baseline {
	var b Baseline
	for _, g := range games {
		b.Games++
		if g.RestedHome {
			b.HomeRested++
		} else {
			b.AwayRested++
		}
		if !g.RestedWon {
			continue
		}
		b.RestedWins++
		if g.RestedHome {
			b.HomeRestedWins++
		} else {
			b.AwayRestedWins++
		}
	}
	b.RestedWinRate = calculateWinRate(b.RestedWins, b.Games) * 100
	b.HomeWinRate = calculateWinRate(b.HomeRestedWins, b.HomeRested) * 100
	b.AwayWinRate = calculateWinRate(b.AwayRestedWins, b.AwayRested) * 100
	return b
}
