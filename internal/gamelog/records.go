package gamelog

import (
	"fmt"
	"time"

	"github.com/yourusername/b2b-edge/internal/models"
)

// TeamRecord is a team's season record up to a date
type TeamRecord struct {
	Team     string `json:"team"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	OTLosses int    `json:"ot_losses"`
	// Streak is positive for consecutive wins and negative for consecutive losses
	Streak int `json:"streak"`
}

// Games returns the number of games the record covers
func (r TeamRecord) Games() int {
	return r.Wins + r.Losses + r.OTLosses
}

// Points uses the two-for-a-win, one-for-an-extra-time-loss convention
func (r TeamRecord) Points() int {
	return 2*r.Wins + r.OTLosses
}

// StreakLabel renders the streak as W3 or L2
func (r TeamRecord) StreakLabel() string {
	switch {
	case r.Streak > 0:
		return fmt.Sprintf("W%d", r.Streak)
	case r.Streak < 0:
		return fmt.Sprintf("L%d", -r.Streak)
	default:
		return "-"
	}
}

// Records builds per-team records from completed games strictly before date
func Records(l *Log, date time.Time) map[string]TeamRecord {
	records := make(map[string]TeamRecord)
	for _, g := range l.Before(date) {
		if !g.Completed {
			continue
		}
		winner, loser := g.HomeTeam, g.AwayTeam
		if !g.HomeWon() {
			winner, loser = loser, winner
		}

		w := records[winner]
		w.Team = winner
		w.Wins++
		if w.Streak < 0 {
			w.Streak = 0
		}
		w.Streak++
		records[winner] = w

		lr := records[loser]
		lr.Team = loser
		if g.PeriodType == models.PeriodOvertime || g.PeriodType == models.PeriodShootout {
			lr.OTLosses++
		} else {
			lr.Losses++
		}
		if lr.Streak > 0 {
			lr.Streak = 0
		}
		lr.Streak--
		records[loser] = lr
	}
	return records
}
