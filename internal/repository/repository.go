// Package repository provides PostgreSQL persistence for the ledger, game
// history and optimizer runs.
package repository

import (
	"fmt"

	"github.com/yourusername/b2b-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Ledger          LedgerRepository
	Game            GameRepository
	OptimizationRun OptimizationRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Ledger:          NewPostgresLedgerRepository(db),
		Game:            NewPostgresGameRepository(db),
		OptimizationRun: NewPostgresOptimizationRunRepository(db),
	}, nil
}
