package models

import (
	"fmt"
	"time"
)

// Sport identifies the league a game belongs to
type Sport string

const (
	SportNHL Sport = "NHL"
	SportNBA Sport = "NBA"
)

// PeriodType records how a completed game was decided
type PeriodType string

const (
	PeriodRegulation PeriodType = "REG"
	PeriodOvertime   PeriodType = "OT"
	PeriodShootout   PeriodType = "SO"
)

// DateLayout is the calendar date format used in persisted records
const DateLayout = "2006-01-02"

// GameRecord represents a single scheduled or completed game
type GameRecord struct {
	Date       time.Time  `db:"game_date" json:"date" validate:"required"`
	Sport      Sport      `db:"sport" json:"sport" validate:"required"`
	Season     string     `db:"season" json:"season"`
	HomeTeam   string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string     `db:"away_team" json:"away_team" validate:"required,nefield=HomeTeam"`
	HomeScore  int        `db:"home_score" json:"home_score" validate:"gte=0"`
	AwayScore  int        `db:"away_score" json:"away_score" validate:"gte=0"`
	PeriodType PeriodType `db:"period_type" json:"period_type"`
	Completed  bool       `db:"completed" json:"completed"`
}

// HomeWon reports whether the home side finished with more goals or points
func (g GameRecord) HomeWon() bool {
	return g.HomeScore > g.AwayScore
}

// Winner returns the winning team, or an empty string for unplayed games
func (g GameRecord) Winner() string {
	if !g.Completed {
		return ""
	}
	if g.HomeWon() {
		return g.HomeTeam
	}
	return g.AwayTeam
}

// Involves checks whether the team played in the game
func (g GameRecord) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// WonBy reports whether the given team won a completed game
func (g GameRecord) WonBy(team string) bool {
	return g.Completed && g.Winner() == team
}

// Key returns the identity of the game for wager bookkeeping
func (g GameRecord) Key() WagerKey {
	return WagerKey{
		Date:     g.Date.Format(DateLayout),
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		Sport:    g.Sport,
	}
}

// String renders the matchup as "AWAY @ HOME (date)"
func (g GameRecord) String() string {
	return fmt.Sprintf("%s @ %s (%s)", g.AwayTeam, g.HomeTeam, g.Date.Format(DateLayout))
}

// DateOnly strips the time of day, returning UTC midnight
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the whole number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
