package repository

import (
	"context"

	"github.com/yourusername/b2b-edge/internal/models"
)

// LedgerRepository persists the wager ledger. It satisfies ledger.Store.
type LedgerRepository interface {
	Load(ctx context.Context) (*models.LedgerState, error)
	Save(ctx context.Context, state *models.LedgerState) error
}

// GameRepository defines game history persistence
type GameRepository interface {
	UpsertBatch(ctx context.Context, games []models.GameRecord) error
	GetSeason(ctx context.Context, sport models.Sport, season string) ([]models.GameRecord, error)
	Seasons(ctx context.Context, sport models.Sport) ([]string, error)
}

// OptimizationRunRepository defines threshold search result persistence
type OptimizationRunRepository interface {
	Save(ctx context.Context, run *models.OptimizationRun) error
	GetLatest(ctx context.Context, sport models.Sport, limit int) ([]*models.OptimizationRun, error)
}
