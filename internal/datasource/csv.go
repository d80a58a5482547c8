package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/models"
)

const csvSourceName = "csv"

var csvRequiredColumns = []string{"date", "home", "away"}

var gameValidator = validator.New()

// CSVSource serves schedules from local CSV files, one per sport.
//
// Columns: date,season,home,away,home_score,away_score,ot_so. A row with
// empty scores is a scheduled game.
type CSVSource struct {
	paths  map[models.Sport]string
	now    func() time.Time
	logger *logrus.Entry
}

// NewCSVSource creates a CSV source for the given per-sport file paths
func NewCSVSource(paths map[models.Sport]string, log *logrus.Logger) *CSVSource {
	return &CSVSource{
		paths:  paths,
		now:    time.Now,
		logger: logger.OrDiscard(log).WithField("component", "csv_source"),
	}
}

// Name returns the name of the data source
func (s *CSVSource) Name() string {
	return csvSourceName
}

// FetchSeason reads the sport's file and keeps the rows labelled with season
func (s *CSVSource) FetchSeason(ctx context.Context, sport models.Sport, season string) (*SeasonData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok := s.paths[sport]
	if !ok || path == "" {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, fmt.Sprintf("no csv file configured for %s", sport), ErrNotFound)
	}

	log, err := LoadLog(path, sport)
	if err != nil {
		return nil, err
	}

	var games []models.GameRecord
	for _, g := range log.Games() {
		if g.Season == "" || g.Season == season {
			g.Season = season
			games = append(games, g)
		}
	}

	data := splitSeason(sport, season, games, s.now())
	data.FetchedAt = s.now()
	s.logger.WithFields(logrus.Fields{
		"path":      path,
		"season":    season,
		"completed": len(data.Completed),
		"upcoming":  len(data.Upcoming),
	}).Debug("Loaded season from csv")
	return data, nil
}

// LoadLog opens path and reads it into a game log
func LoadLog(path string, sport models.Sport) (*gamelog.Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeNotFound, "failed to open file", err)
	}
	defer file.Close()

	games, err := ReadGames(file, sport)
	if err != nil {
		return nil, err
	}
	return gamelog.NewLog(games), nil
}

// ReadGames parses CSV rows into game records
func ReadGames(r io.Reader, sport models.Sport) ([]models.GameRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, "failed to read header", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range csvRequiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("missing column %q", col), ErrInvalidData)
		}
	}

	var games []models.GameRecord
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d", line), err)
		}

		g, err := parseRow(record, colIndex, sport)
		if err != nil {
			return nil, NewDataSourceError(csvSourceName, ErrCodeInvalidData, fmt.Sprintf("line %d", line), err)
		}
		games = append(games, g)
	}
	return games, nil
}

func parseRow(record []string, colIndex map[string]int, sport models.Sport) (models.GameRecord, error) {
	field := func(name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := models.ParseDate(field("date"))
	if err != nil {
		return models.GameRecord{}, err
	}
	g := models.GameRecord{
		Date:     date,
		Sport:    sport,
		Season:   field("season"),
		HomeTeam: field("home"),
		AwayTeam: field("away"),
	}

	homeScore, awayScore := field("home_score"), field("away_score")
	if homeScore != "" && awayScore != "" {
		if g.HomeScore, err = strconv.Atoi(homeScore); err != nil {
			return models.GameRecord{}, fmt.Errorf("home_score: %w", err)
		}
		if g.AwayScore, err = strconv.Atoi(awayScore); err != nil {
			return models.GameRecord{}, fmt.Errorf("away_score: %w", err)
		}
		g.Completed = true
		g.PeriodType = models.PeriodRegulation
		switch strings.ToUpper(field("ot_so")) {
		case "OT":
			g.PeriodType = models.PeriodOvertime
		case "SO":
			g.PeriodType = models.PeriodShootout
		}
	}

	if err := gameValidator.Struct(g); err != nil {
		return models.GameRecord{}, fmt.Errorf("%w: %v", models.ErrInvalidGame, err)
	}
	return g, nil
}
