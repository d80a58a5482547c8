package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/b2b-edge/internal/database"
	"github.com/yourusername/b2b-edge/internal/models"
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// UpsertBatch inserts games or refreshes their scores
func (g *PostgresGameRepository) UpsertBatch(ctx context.Context, games []models.GameRecord) error {
	if len(games) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, game := range games {
		batch.Queue(`
			INSERT INTO games (sport, season, game_date, home_team, away_team, home_score, away_score, period_type, completed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (sport, game_date, home_team, away_team) DO UPDATE SET
				season = EXCLUDED.season, home_score = EXCLUDED.home_score, away_score = EXCLUDED.away_score,
				period_type = EXCLUDED.period_type, completed = EXCLUDED.completed
		`,
			string(game.Sport), game.Season, models.DateOnly(game.Date), game.HomeTeam, game.AwayTeam,
			game.HomeScore, game.AwayScore, string(game.PeriodType), game.Completed,
		)
	}

	if err := g.db.GetPool().SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert games: %w", err)
	}
	return nil
}

// GetSeason retrieves a season's games in date order
func (g *PostgresGameRepository) GetSeason(ctx context.Context, sport models.Sport, season string) ([]models.GameRecord, error) {
	query := `
		SELECT game_date, sport, season, home_team, away_team, home_score, away_score, period_type, completed
		FROM games
		WHERE sport = $1 AND season = $2
		ORDER BY game_date, home_team
	`
	rows, err := g.db.GetPool().Query(ctx, query, string(sport), season)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.GameRecord
	for rows.Next() {
		var game models.GameRecord
		if err := rows.Scan(
			&game.Date, &game.Sport, &game.Season, &game.HomeTeam, &game.AwayTeam,
			&game.HomeScore, &game.AwayScore, &game.PeriodType, &game.Completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		game.Date = models.DateOnly(game.Date)
		games = append(games, game)
	}
	return games, rows.Err()
}

// Seasons lists the stored season labels for a sport, oldest first
func (g *PostgresGameRepository) Seasons(ctx context.Context, sport models.Sport) ([]string, error) {
	rows, err := g.db.GetPool().Query(ctx,
		`SELECT DISTINCT season FROM games WHERE sport = $1 ORDER BY season`, string(sport))
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}
