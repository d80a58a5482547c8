package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/b2b-edge/internal/database"
	"github.com/yourusername/b2b-edge/internal/models"
)

// PostgresOptimizationRunRepository implements OptimizationRunRepository for PostgreSQL
type PostgresOptimizationRunRepository struct {
	db *database.DB
}

// NewPostgresOptimizationRunRepository creates a new optimization run repository
func NewPostgresOptimizationRunRepository(db *database.DB) OptimizationRunRepository {
	return &PostgresOptimizationRunRepository{db: db}
}

// Save inserts an optimization run
func (r *PostgresOptimizationRunRepository) Save(ctx context.Context, run *models.OptimizationRun) error {
	query := `
		INSERT INTO optimization_runs (id, sport, seasons, thresholds, total_games, mean_win_rate, tier_stats, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, string(run.Sport), run.Seasons, run.Thresholds, run.TotalGames, run.MeanWinRate, run.TierStats, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save optimization run: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent runs for a sport
func (r *PostgresOptimizationRunRepository) GetLatest(ctx context.Context, sport models.Sport, limit int) ([]*models.OptimizationRun, error) {
	query := `
		SELECT id, sport, seasons, thresholds, total_games, mean_win_rate, tier_stats, created_at
		FROM optimization_runs
		WHERE sport = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.GetPool().Query(ctx, query, string(sport), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.OptimizationRun
	for rows.Next() {
		run := &models.OptimizationRun{}
		if err := rows.Scan(
			&run.ID, &run.Sport, &run.Seasons, &run.Thresholds, &run.TotalGames, &run.MeanWinRate, &run.TierStats, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
