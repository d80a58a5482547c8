package gamelog

import (
	"sort"

	"github.com/yourusername/b2b-edge/internal/models"
)

// Matchup is an upcoming game enriched with rest and form for both sides
type Matchup struct {
	Game     models.GameRecord `json:"game"`
	HomeRest int               `json:"home_rest"`
	AwayRest int               `json:"away_rest"`
	HomeB2B  bool              `json:"home_b2b"`
	AwayB2B  bool              `json:"away_b2b"`
	HomeForm FormContext       `json:"home_form"`
	AwayForm FormContext       `json:"away_form"`
}

// Advantage labels which side holds the rest edge
func (m Matchup) Advantage() RestAdvantage {
	return CompareRest(m.HomeRest, m.AwayRest)
}

// HasRestAdvantage reports whether exactly one side is on a back-to-back
func (m Matchup) HasRestAdvantage() bool {
	return m.HomeB2B != m.AwayB2B
}

// Timeline evaluates scheduled games in date order. Each evaluated game is
// folded into the rest map so later games in the window see it.
type Timeline struct {
	history    *Log
	rest       *RestTracker
	definition BackToBackDefinition
	formWindow int
}

// NewTimeline seeds rest state from every game in the history
func NewTimeline(history *Log, def BackToBackDefinition, formWindow int) *Timeline {
	rt := NewRestTracker()
	cur := history.Cursor()
	for g, ok := cur.Next(); ok; g, ok = cur.Next() {
		rt.Observe(g)
	}
	if def == "" {
		def = PlayedYesterday
	}
	return &Timeline{history: history, rest: rt, definition: def, formWindow: formWindow}
}

// Evaluate returns a matchup per upcoming game. Form comes from completed
// history only; rest includes earlier upcoming games.
func (t *Timeline) Evaluate(upcoming []models.GameRecord) []Matchup {
	ordered := make([]models.GameRecord, len(upcoming))
	copy(ordered, upcoming)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	matchups := make([]Matchup, 0, len(ordered))
	for _, g := range ordered {
		g.Date = models.DateOnly(g.Date)
		m := t.matchup(g)
		matchups = append(matchups, m)
		t.rest.Observe(g)
	}
	return matchups
}

func (t *Timeline) matchup(g models.GameRecord) Matchup {
	homeRest := t.rest.RestDays(g.HomeTeam, g.Date)
	awayRest := t.rest.RestDays(g.AwayTeam, g.Date)
	return Matchup{
		Game:     g,
		HomeRest: homeRest,
		AwayRest: awayRest,
		HomeB2B:  IsBackToBack(homeRest, t.definition),
		AwayB2B:  IsBackToBack(awayRest, t.definition),
		HomeForm: Form(t.history, g.HomeTeam, g.Date, t.formWindow),
		AwayForm: Form(t.history, g.AwayTeam, g.Date, t.formWindow),
	}
}

// Replay walks a completed log in order and yields the matchup each game
// presented before it was played.
func Replay(l *Log, def BackToBackDefinition, formWindow int, fn func(Matchup)) {
	if def == "" {
		def = PlayedYesterday
	}
	rt := NewRestTracker()
	cur := l.Cursor()
	for g, ok := cur.Next(); ok; g, ok = cur.Next() {
		homeRest := rt.RestDays(g.HomeTeam, g.Date)
		awayRest := rt.RestDays(g.AwayTeam, g.Date)
		if g.Completed {
			fn(Matchup{
				Game:     g,
				HomeRest: homeRest,
				AwayRest: awayRest,
				HomeB2B:  IsBackToBack(homeRest, def),
				AwayB2B:  IsBackToBack(awayRest, def),
				HomeForm: Form(l, g.HomeTeam, g.Date, formWindow),
				AwayForm: Form(l, g.AwayTeam, g.Date, formWindow),
			})
		}
		rt.Observe(g)
	}
}
