// Package gamelog holds the chronological game history and the rest and form
// calculations derived from it.
package gamelog

import (
	"sort"
	"time"

	"github.com/yourusername/b2b-edge/internal/models"
)

// Log is an append-only, date-ordered sequence of games.
// Games on the same date keep the order in which they were supplied.
type Log struct {
	games []models.GameRecord
}

// NewLog builds a log from games in any order
func NewLog(games []models.GameRecord) *Log {
	sorted := make([]models.GameRecord, len(games))
	for i, g := range games {
		g.Date = models.DateOnly(g.Date)
		sorted[i] = g
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &Log{games: sorted}
}

// Append adds a game. A game dated before the last entry is inserted after
// every game sharing or preceding its date so ordering holds.
func (l *Log) Append(g models.GameRecord) {
	g.Date = models.DateOnly(g.Date)
	idx := sort.Search(len(l.games), func(i int) bool {
		return l.games[i].Date.After(g.Date)
	})
	l.games = append(l.games, models.GameRecord{})
	copy(l.games[idx+1:], l.games[idx:])
	l.games[idx] = g
}

// Len returns the number of games in the log
func (l *Log) Len() int {
	return len(l.games)
}

// Games returns a copy of the games in chronological order
func (l *Log) Games() []models.GameRecord {
	out := make([]models.GameRecord, len(l.games))
	copy(out, l.games)
	return out
}

// Completed returns only completed games
func (l *Log) Completed() []models.GameRecord {
	out := make([]models.GameRecord, 0, len(l.games))
	for _, g := range l.games {
		if g.Completed {
			out = append(out, g)
		}
	}
	return out
}

// Before returns the games strictly earlier than date
func (l *Log) Before(date time.Time) []models.GameRecord {
	date = models.DateOnly(date)
	idx := sort.Search(len(l.games), func(i int) bool {
		return !l.games[i].Date.Before(date)
	})
	return l.games[:idx:idx]
}

// Seasons returns the distinct season labels in order of first appearance
func (l *Log) Seasons() []string {
	seen := make(map[string]bool)
	var seasons []string
	for _, g := range l.games {
		if g.Season == "" || seen[g.Season] {
			continue
		}
		seen[g.Season] = true
		seasons = append(seasons, g.Season)
	}
	return seasons
}

// Season returns a log holding only the games labelled with season
func (l *Log) Season(season string) *Log {
	games := make([]models.GameRecord, 0)
	for _, g := range l.games {
		if g.Season == season {
			games = append(games, g)
		}
	}
	return &Log{games: games}
}

// Cursor walks the log in order. Position reflects how many games have been consumed.
type Cursor struct {
	log *Log
	pos int
}

// Cursor returns a cursor positioned at the start of the log
func (l *Log) Cursor() *Cursor {
	return &Cursor{log: l}
}

// Next returns the next game, or false once the log is exhausted
func (c *Cursor) Next() (models.GameRecord, bool) {
	if c.pos >= len(c.log.games) {
		return models.GameRecord{}, false
	}
	g := c.log.games[c.pos]
	c.pos++
	return g, true
}

// Position returns the number of games consumed
func (c *Cursor) Position() int {
	return c.pos
}
