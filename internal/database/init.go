package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/config"
	"github.com/yourusername/b2b-edge/internal/logger"
)

// schema is applied idempotently at startup
var schema = []string{
	`CREATE TABLE IF NOT EXISTS wagers (
		id              UUID PRIMARY KEY,
		seq             INTEGER NOT NULL,
		game_date       DATE NOT NULL,
		sport           TEXT NOT NULL,
		home_team       TEXT NOT NULL,
		away_team       TEXT NOT NULL,
		pick            TEXT NOT NULL,
		odds            DOUBLE PRECISION NOT NULL,
		stake           DOUBLE PRECISION NOT NULL,
		edge_pct        DOUBLE PRECISION NOT NULL,
		reason          TEXT NOT NULL DEFAULT '',
		tier            TEXT NOT NULL,
		form_advantage  INTEGER NOT NULL DEFAULT 0,
		rested_wins     INTEGER NOT NULL DEFAULT 0,
		b2b_wins        INTEGER NOT NULL DEFAULT 0,
		adjustments     TEXT[] NOT NULL DEFAULT '{}',
		result          TEXT NOT NULL,
		profit          DOUBLE PRECISION NOT NULL DEFAULT 0,
		bankroll_before DOUBLE PRECISION NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		settled_at      TIMESTAMPTZ,
		UNIQUE (game_date, home_team, away_team, sport)
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_bankroll (
		id               SMALLINT PRIMARY KEY CHECK (id = 1),
		initial_bankroll DOUBLE PRECISION NOT NULL,
		current_bankroll DOUBLE PRECISION NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		sport       TEXT NOT NULL,
		season      TEXT NOT NULL,
		game_date   DATE NOT NULL,
		home_team   TEXT NOT NULL,
		away_team   TEXT NOT NULL,
		home_score  INTEGER NOT NULL DEFAULT 0,
		away_score  INTEGER NOT NULL DEFAULT 0,
		period_type TEXT NOT NULL DEFAULT '',
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (sport, game_date, home_team, away_team)
	)`,
	`CREATE INDEX IF NOT EXISTS games_sport_season_idx ON games (sport, season, game_date)`,
	`CREATE TABLE IF NOT EXISTS optimization_runs (
		id            UUID PRIMARY KEY,
		sport         TEXT NOT NULL,
		seasons       TEXT[] NOT NULL DEFAULT '{}',
		thresholds    JSONB NOT NULL,
		total_games   INTEGER NOT NULL,
		mean_win_rate DOUBLE PRECISION NOT NULL,
		tier_stats    JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.OrDiscard(log).WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("Database ready")
	return db, nil
}

// EnsureSchema creates any missing tables
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
