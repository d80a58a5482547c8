package gamelog

import (
	"fmt"
	"time"
)

// DefaultFormWindow is the number of recent games considered for form
const DefaultFormWindow = 5

// FormContext is a team's recent record going into a game
type FormContext struct {
	Wins  int `json:"wins"`
	Games int `json:"games"`
}

// Losses returns the games not won within the window
func (f FormContext) Losses() int {
	return f.Games - f.Wins
}

// Record renders the form as "W-L"
func (f FormContext) Record() string {
	return fmt.Sprintf("%d-%d", f.Wins, f.Losses())
}

// Form counts wins in the team's last n completed games strictly before date
func Form(l *Log, team string, date time.Time, n int) FormContext {
	if n <= 0 {
		n = DefaultFormWindow
	}
	prior := l.Before(date)
	var fc FormContext
	for i := len(prior) - 1; i >= 0 && fc.Games < n; i-- {
		g := prior[i]
		if !g.Completed || !g.Involves(team) {
			continue
		}
		fc.Games++
		if g.WonBy(team) {
			fc.Wins++
		}
	}
	return fc
}
