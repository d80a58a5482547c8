package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OptimizationRun represents a persisted threshold search result
type OptimizationRun struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Sport       Sport           `db:"sport" json:"sport"`
	Seasons     []string        `db:"seasons" json:"seasons"`
	Thresholds  json.RawMessage `db:"thresholds" json:"thresholds"`
	TotalGames  int             `db:"total_games" json:"total_games"`
	MeanWinRate float64         `db:"mean_win_rate" json:"mean_win_rate"`
	TierStats   json.RawMessage `db:"tier_stats" json:"tier_stats"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
