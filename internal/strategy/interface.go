package strategy

import (
	"context"
	"time"

	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
)

// Strategy turns evaluated matchups into bet and skip signals
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error)
	ShouldBet(signal Signal) bool
	GetParameters() map[string]interface{}
}

// Signal is the outcome for one matchup, whether or not it is bet
type Signal struct {
	Game          models.GameRecord   `json:"game"`
	Pick          string              `json:"pick,omitempty"`
	Opponent      string              `json:"opponent,omitempty"`
	PickIsHome    bool                `json:"pick_is_home"`
	Decision      Decision            `json:"decision"`
	WinRate       float64             `json:"win_rate"`
	Odds          float64             `json:"odds"`
	ExpectedValue float64             `json:"expected_value"`
	HomeRest      int                 `json:"home_rest"`
	AwayRest      int                 `json:"away_rest"`
	RestedForm    gamelog.FormContext `json:"rested_form"`
	B2BForm       gamelog.FormContext `json:"b2b_form"`
	Lineup        *LineupSignals      `json:"lineup,omitempty"`
}

// Context provides the strategy with temporal-safe inputs
type Context struct {
	Sport       models.Sport
	Matchups    []gamelog.Matchup
	CurrentTime time.Time
}
