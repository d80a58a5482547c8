package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/b2b-edge/internal/database"
	"github.com/yourusername/b2b-edge/internal/models"
)

const errScanWager = "failed to scan wager: %w"

// PostgresLedgerRepository stores wagers in one table and the bankroll in a
// single-row table. Save replaces the whole state in one transaction.
type PostgresLedgerRepository struct {
	db *database.DB
}

// NewPostgresLedgerRepository creates a new ledger repository
func NewPostgresLedgerRepository(db *database.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// Load reads every wager in insertion order plus the bankroll
func (r *PostgresLedgerRepository) Load(ctx context.Context) (*models.LedgerState, error) {
	state := &models.LedgerState{Bets: []*models.Wager{}}

	err := r.db.GetPool().QueryRow(ctx,
		`SELECT initial_bankroll, current_bankroll FROM ledger_bankroll WHERE id = 1`,
	).Scan(&state.InitialBankroll, &state.CurrentBankroll)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bankroll: %w", err)
	}

	query := `
		SELECT id, game_date::text, sport, home_team, away_team, pick, odds, stake, edge_pct,
		       reason, tier, form_advantage, rested_wins, b2b_wins, adjustments, result,
		       profit, bankroll_before, created_at, settled_at
		FROM wagers ORDER BY seq
	`
	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wagers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		w := &models.Wager{}
		if err := rows.Scan(
			&w.ID, &w.Date, &w.Sport, &w.HomeTeam, &w.AwayTeam, &w.Pick, &w.Odds, &w.Stake, &w.EdgePercent,
			&w.Reason, &w.Tier, &w.FormAdvantage, &w.RestedWins, &w.B2BWins, &w.Adjustments, &w.Result,
			&w.Profit, &w.BankrollBefore, &w.CreatedAt, &w.SettledAt,
		); err != nil {
			return nil, fmt.Errorf(errScanWager, err)
		}
		if len(w.Adjustments) == 0 {
			w.Adjustments = nil
		}
		state.Bets = append(state.Bets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wagers: %w", err)
	}
	return state, nil
}

// Save removes wagers no longer in state, upserts the rest and writes the
// bankroll. Nothing is committed if any statement fails.
func (r *PostgresLedgerRepository) Save(ctx context.Context, state *models.LedgerState) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		ids := make([]uuid.UUID, 0, len(state.Bets))
		for _, w := range state.Bets {
			ids = append(ids, w.ID)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM wagers WHERE NOT (id = ANY($1))`, ids)
		for i, w := range state.Bets {
			adjustments := w.Adjustments
			if adjustments == nil {
				adjustments = []string{}
			}
			batch.Queue(`
				INSERT INTO wagers (
					id, seq, game_date, sport, home_team, away_team, pick, odds, stake, edge_pct,
					reason, tier, form_advantage, rested_wins, b2b_wins, adjustments, result,
					profit, bankroll_before, created_at, settled_at
				) VALUES ($1,$2,$3::date,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
				ON CONFLICT (id) DO UPDATE SET
					seq = EXCLUDED.seq, result = EXCLUDED.result, profit = EXCLUDED.profit,
					settled_at = EXCLUDED.settled_at, adjustments = EXCLUDED.adjustments
			`,
				w.ID, i, w.Date, string(w.Sport), w.HomeTeam, w.AwayTeam, w.Pick, w.Odds, w.Stake, w.EdgePercent,
				w.Reason, string(w.Tier), w.FormAdvantage, w.RestedWins, w.B2BWins, adjustments, string(w.Result),
				w.Profit, w.BankrollBefore, w.CreatedAt, w.SettledAt,
			)
		}
		batch.Queue(`
			INSERT INTO ledger_bankroll (id, initial_bankroll, current_bankroll, updated_at)
			VALUES (1, $1, $2, NOW())
			ON CONFLICT (id) DO UPDATE SET
				initial_bankroll = EXCLUDED.initial_bankroll,
				current_bankroll = EXCLUDED.current_bankroll,
				updated_at = NOW()
		`, state.InitialBankroll, state.CurrentBankroll)

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save ledger: %w", err)
		}
		return nil
	})
}
