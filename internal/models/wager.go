package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WagerResult represents the settlement state of a wager
type WagerResult string

const (
	WagerResultPending WagerResult = "pending"
	WagerResultWon     WagerResult = "won"
	WagerResultLost    WagerResult = "lost"
)

// WagerKey is the identity of a wager: one wager per game per sport
type WagerKey struct {
	Date     string `json:"date"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Sport    Sport  `json:"sport"`
}

func (k WagerKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Sport, k.Date, k.AwayTeam, k.HomeTeam)
}

// Wager represents a recorded recommendation and its outcome.
// JSON field names follow the persisted ledger file format.
type Wager struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	Date           string      `db:"game_date" json:"date" validate:"required,datetime=2006-01-02"`
	Sport          Sport       `db:"sport" json:"sport" validate:"required"`
	HomeTeam       string      `db:"home_team" json:"home" validate:"required"`
	AwayTeam       string      `db:"away_team" json:"away" validate:"required"`
	Pick           string      `db:"pick" json:"pick" validate:"required"`
	Odds           float64     `db:"odds" json:"odds" validate:"gt=1"`
	Stake          float64     `db:"stake" json:"bet_amount" validate:"gt=0"`
	EdgePercent    float64     `db:"edge_pct" json:"edge_pct"`
	Reason         string      `db:"reason" json:"reason"`
	Tier           Tier        `db:"tier" json:"tier" validate:"required,oneof=S A B"`
	FormAdvantage  int         `db:"form_advantage" json:"form_advantage"`
	RestedWins     int         `db:"rested_wins" json:"rested_wins"`
	B2BWins        int         `db:"b2b_wins" json:"b2b_wins"`
	Adjustments    []string    `db:"adjustments" json:"adjustments,omitempty"`
	Result         WagerResult `db:"result" json:"result" validate:"required,oneof=pending won lost"`
	Profit         float64     `db:"profit" json:"profit"`
	BankrollBefore float64     `db:"bankroll_before" json:"bankroll_before"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	SettledAt      *time.Time  `db:"settled_at" json:"settled_at,omitempty"`
}

// Key returns the wager's identity
func (w *Wager) Key() WagerKey {
	return WagerKey{Date: w.Date, HomeTeam: w.HomeTeam, AwayTeam: w.AwayTeam, Sport: w.Sport}
}

// IsPending checks if the wager still awaits a result
func (w *Wager) IsPending() bool {
	return w.Result == WagerResultPending
}

// IsSettled checks if the wager has been settled
func (w *Wager) IsSettled() bool {
	return w.Result == WagerResultWon || w.Result == WagerResultLost
}

// PickIsHome reports whether the pick is the home side
func (w *Wager) PickIsHome() bool {
	return w.Pick == w.HomeTeam
}

// Opponent returns the side the wager is against
func (w *Wager) Opponent() string {
	if w.PickIsHome() {
		return w.AwayTeam
	}
	return w.HomeTeam
}

// GetROI returns the return on the wager as a percentage of stake
func (w *Wager) GetROI() float64 {
	if w.Stake == 0 || !w.IsSettled() {
		return 0
	}
	return w.Profit / w.Stake * 100
}
