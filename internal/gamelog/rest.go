package gamelog

import (
	"time"

	"github.com/yourusername/b2b-edge/internal/models"
)

// NoPriorGame is the rest value reported when a team has no earlier game
const NoPriorGame = 999

// BackToBackDefinition selects which rest value counts as a back-to-back
type BackToBackDefinition string

const (
	// PlayedYesterday flags a team that played the previous calendar day
	PlayedYesterday BackToBackDefinition = "played_yesterday"
	// SameDay flags a team with a game earlier on the same date
	SameDay BackToBackDefinition = "same_day"
)

// IsBackToBack applies the definition to a rest value
func IsBackToBack(restDays int, def BackToBackDefinition) bool {
	if def == SameDay {
		return restDays == 0
	}
	return restDays == 1
}

// RestTracker keeps the most recent game date per team
type RestTracker struct {
	lastPlayed map[string]time.Time
}

// NewRestTracker creates an empty tracker
func NewRestTracker() *RestTracker {
	return &RestTracker{lastPlayed: make(map[string]time.Time)}
}

// Observe records both teams of a game as having played on its date
func (rt *RestTracker) Observe(g models.GameRecord) {
	date := models.DateOnly(g.Date)
	for _, team := range []string{g.HomeTeam, g.AwayTeam} {
		if last, ok := rt.lastPlayed[team]; !ok || date.After(last) {
			rt.lastPlayed[team] = date
		}
	}
}

// RestDays returns the days since the team last played, or NoPriorGame
func (rt *RestTracker) RestDays(team string, date time.Time) int {
	last, ok := rt.lastPlayed[team]
	if !ok {
		return NoPriorGame
	}
	return models.DaysBetween(last, date)
}

// LastPlayed returns the team's most recent observed date
func (rt *RestTracker) LastPlayed(team string) (time.Time, bool) {
	last, ok := rt.lastPlayed[team]
	return last, ok
}

// RestDays computes rest from the log for a team before date
func RestDays(l *Log, team string, date time.Time) int {
	prior := l.Before(date)
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Involves(team) {
			return models.DaysBetween(prior[i].Date, date)
		}
	}
	return NoPriorGame
}

// RestAdvantage labels which side, if any, holds the rest edge
type RestAdvantage string

const (
	RestAdvantageHome  RestAdvantage = "home"
	RestAdvantageAway  RestAdvantage = "away"
	RestAdvantageEqual RestAdvantage = "equal"
)

// CompareRest labels the rest advantage between home and away
func CompareRest(homeRest, awayRest int) RestAdvantage {
	switch {
	case homeRest > awayRest:
		return RestAdvantageHome
	case awayRest > homeRest:
		return RestAdvantageAway
	default:
		return RestAdvantageEqual
	}
}
