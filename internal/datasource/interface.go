// Package datasource supplies game schedules, results and standings from
// external providers and local files.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
)

// ScheduleSource supplies a season's completed and upcoming games
type ScheduleSource interface {
	// FetchSeason retrieves every game of the season known to the provider
	FetchSeason(ctx context.Context, sport models.Sport, season string) (*SeasonData, error)

	// Name returns the name of the data source
	Name() string
}

// StandingsSource supplies league standings for display
type StandingsSource interface {
	FetchStandings(ctx context.Context, sport models.Sport) (map[string]Standing, error)
}

// SeasonData is one season's games split by status
type SeasonData struct {
	Sport     models.Sport        `json:"sport"`
	Season    string              `json:"season"`
	Completed []models.GameRecord `json:"completed"`
	Upcoming  []models.GameRecord `json:"upcoming"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// History returns the completed games as a game log
func (s *SeasonData) History() *gamelog.Log {
	return gamelog.NewLog(s.Completed)
}

// UpcomingWithin returns upcoming games dated from today through today+days
func (s *SeasonData) UpcomingWithin(today time.Time, days int) []models.GameRecord {
	today = models.DateOnly(today)
	limit := today.AddDate(0, 0, days)
	out := make([]models.GameRecord, 0, len(s.Upcoming))
	for _, g := range s.Upcoming {
		d := models.DateOnly(g.Date)
		if d.Before(today) || d.After(limit) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Standing is a team's league position
type Standing struct {
	Team       string `json:"team"`
	Rank       int    `json:"rank"`
	Points     int    `json:"points"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Conference string `json:"conference"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeUnsupported       = "unsupported"
)

// Error constructors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrCircuitOpen       = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// splitSeason separates completed games from those still to be played on or after today
func splitSeason(sport models.Sport, season string, games []models.GameRecord, today time.Time) *SeasonData {
	today = models.DateOnly(today)
	data := &SeasonData{Sport: sport, Season: season}
	for _, g := range games {
		switch {
		case g.Completed:
			data.Completed = append(data.Completed, g)
		case !models.DateOnly(g.Date).Before(today):
			data.Upcoming = append(data.Upcoming, g)
		}
	}
	return data
}
