package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/config"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/models"
)

// SourceType represents the type of data source
type SourceType string

const (
	// ESPNSourceType reads the public scoreboard API
	ESPNSourceType SourceType = "espn"
	// CSVSourceType reads a local schedule file
	CSVSourceType SourceType = "csv"
)

// Factory creates schedule and standings sources based on configuration.
// ESPN-backed sports share one rate-limited client.
type Factory struct {
	logger     *logrus.Logger
	config     *config.Config
	httpClient *RateLimitedHTTPClient
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, log *logrus.Logger) *Factory {
	log = logger.OrDiscard(log)
	return &Factory{
		logger:     log,
		config:     cfg,
		httpClient: NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg.DataSource), log),
	}
}

// ScheduleFor returns the cached schedule source configured for sport
func (f *Factory) ScheduleFor(sport models.Sport) (*SeasonCache, error) {
	sc, ok := f.config.Sport(sport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSport, sport)
	}
	src, err := f.Create(SourceType(sc.Source), sc)
	if err != nil {
		return nil, err
	}
	return NewSeasonCache(src, f.config.CacheTTL(), f.logger), nil
}

// Create creates an uncached source of the given type for one sport
func (f *Factory) Create(sourceType SourceType, sc config.SportConfig) (ScheduleSource, error) {
	switch sourceType {
	case ESPNSourceType:
		return f.espn(), nil
	case CSVSourceType:
		if sc.CSVPath == "" {
			return nil, fmt.Errorf("csv source for %s requires csv_path", sc.Name)
		}
		return NewCSVSource(map[models.Sport]string{models.Sport(sc.Name): sc.CSVPath}, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// Standings returns the standings source. Only ESPN publishes standings.
func (f *Factory) Standings() StandingsSource {
	return f.espn()
}

// CircuitOpen reports whether the shared HTTP client has tripped its breaker
func (f *Factory) CircuitOpen() bool {
	return f.httpClient.IsOpen()
}

// Close releases the shared HTTP client
func (f *Factory) Close() error {
	return f.httpClient.Close()
}

func (f *Factory) espn() *ESPNClient {
	return NewESPNClient(f.httpClient, f.config.DataSource.BaseURL, f.config.Engine.UpcomingDays, f.logger)
}
