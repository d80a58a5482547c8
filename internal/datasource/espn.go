package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/b2b-edge/internal/logger"
	"github.com/yourusername/b2b-edge/internal/metrics"
	"github.com/yourusername/b2b-edge/internal/models"
)

const (
	espnSourceName     = "espn"
	espnDateLayout     = "20060102"
	espnPreseasonType  = 1
	defaultESPNBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
)

// ESPNClient implements ScheduleSource and StandingsSource over ESPN's public JSON API
type ESPNClient struct {
	httpClient   *RateLimitedHTTPClient
	baseURL      string
	upcomingDays int
	now          func() time.Time
	logger       *logrus.Entry
}

type espnScoreboard struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Season struct {
		Year int `json:"year"`
		Type int `json:"type"`
	} `json:"season"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnCompetition struct {
	Competitors []espnCompetitor `json:"competitors"`
	Status      espnStatus       `json:"status"`
}

type espnCompetitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		DisplayName  string `json:"displayName"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

type espnStatus struct {
	Period int `json:"period"`
	Type   struct {
		Completed   bool   `json:"completed"`
		ShortDetail string `json:"shortDetail"`
	} `json:"type"`
}

type espnStandings struct {
	Children []struct {
		Name      string `json:"name"`
		Standings struct {
			Entries []struct {
				Team struct {
					DisplayName string `json:"displayName"`
				} `json:"team"`
				Stats []struct {
					Name  string  `json:"name"`
					Value float64 `json:"value"`
				} `json:"stats"`
			} `json:"entries"`
		} `json:"standings"`
	} `json:"children"`
}

// NewESPNClient creates a client for the scoreboard and standings endpoints
func NewESPNClient(httpClient *RateLimitedHTTPClient, baseURL string, upcomingDays int, log *logrus.Logger) *ESPNClient {
	if baseURL == "" {
		baseURL = defaultESPNBaseURL
	}
	return &ESPNClient{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		upcomingDays: upcomingDays,
		now:          time.Now,
		logger:       logger.OrDiscard(log).WithField("component", "espn"),
	}
}

// Name returns the name of the data source
func (c *ESPNClient) Name() string {
	return espnSourceName
}

// SeasonWindow returns the calendar span of a season labelled by the year it ends in
func SeasonWindow(season string) (time.Time, time.Time, error) {
	year, err := strconv.Atoi(season)
	if err != nil || year < 1900 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid season %q: expected the ending year, e.g. 2026", season)
	}
	start := time.Date(year-1, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

func sportPath(sport models.Sport) (string, error) {
	switch sport {
	case models.SportNHL:
		return "hockey/nhl", nil
	case models.SportNBA:
		return "basketball/nba", nil
	default:
		return "", fmt.Errorf("%w: %s", models.ErrUnknownSport, sport)
	}
}

func regulationPeriods(sport models.Sport) int {
	if sport == models.SportNBA {
		return 4
	}
	return 3
}

// FetchSeason walks the scoreboard one day at a time from the season start
// through the upcoming window, or the season end if sooner
func (c *ESPNClient) FetchSeason(ctx context.Context, sport models.Sport, season string) (*SeasonData, error) {
	start, end, err := SeasonWindow(season)
	if err != nil {
		return nil, NewDataSourceError(espnSourceName, ErrCodeInvalidData, "bad season label", err)
	}
	today := models.DateOnly(c.now())
	if limit := today.AddDate(0, 0, c.upcomingDays); end.After(limit) {
		end = limit
	}

	var games []models.GameRecord
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayGames, err := c.FetchDay(ctx, sport, day)
		if err != nil {
			return nil, err
		}
		for i := range dayGames {
			dayGames[i].Season = season
		}
		games = append(games, dayGames...)
	}

	data := splitSeason(sport, season, games, today)
	data.FetchedAt = c.now()
	c.logger.WithFields(logrus.Fields{
		"sport":     sport,
		"season":    season,
		"completed": len(data.Completed),
		"upcoming":  len(data.Upcoming),
	}).Info("Fetched season schedule")
	return data, nil
}

// FetchDay returns the games on one scoreboard date. Games take the
// scoreboard date rather than the UTC start time so late tip-offs stay on
// their local day.
func (c *ESPNClient) FetchDay(ctx context.Context, sport models.Sport, day time.Time) ([]models.GameRecord, error) {
	path, err := sportPath(sport)
	if err != nil {
		return nil, NewDataSourceError(espnSourceName, ErrCodeUnsupported, "unsupported sport", err)
	}
	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, path, day.Format(espnDateLayout))

	var board espnScoreboard
	if err := c.getJSON(ctx, url, &board); err != nil {
		return nil, err
	}

	games := make([]models.GameRecord, 0, len(board.Events))
	for _, ev := range board.Events {
		if ev.Season.Type == espnPreseasonType {
			continue
		}
		g, err := convertEvent(sport, models.DateOnly(day), ev)
		if errors.Is(err, errNoCompetitors) {
			c.logger.WithField("event_id", ev.ID).Debug("Skipping event without home and away competitors")
			continue
		}
		if err != nil {
			c.logger.WithError(err).WithField("event_id", ev.ID).Warn("Skipping event with unreadable score")
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

var errNoCompetitors = errors.New("event has no home and away competitors")

func convertEvent(sport models.Sport, day time.Time, ev espnEvent) (models.GameRecord, error) {
	if len(ev.Competitions) == 0 {
		return models.GameRecord{}, errNoCompetitors
	}
	comp := ev.Competitions[0]
	var home, away *espnCompetitor
	for i := range comp.Competitors {
		switch comp.Competitors[i].HomeAway {
		case "home":
			home = &comp.Competitors[i]
		case "away":
			away = &comp.Competitors[i]
		}
	}
	if home == nil || away == nil {
		return models.GameRecord{}, errNoCompetitors
	}

	g := models.GameRecord{
		Date:     day,
		Sport:    sport,
		HomeTeam: home.Team.DisplayName,
		AwayTeam: away.Team.DisplayName,
	}
	if comp.Status.Type.Completed {
		homeScore, err := strconv.Atoi(strings.TrimSpace(home.Score))
		if err != nil {
			return models.GameRecord{}, fmt.Errorf("home score %q: %w", home.Score, err)
		}
		awayScore, err := strconv.Atoi(strings.TrimSpace(away.Score))
		if err != nil {
			return models.GameRecord{}, fmt.Errorf("away score %q: %w", away.Score, err)
		}
		g.Completed = true
		g.HomeScore = homeScore
		g.AwayScore = awayScore
		g.PeriodType = periodType(sport, comp.Status)
	}
	return g, nil
}

func periodType(sport models.Sport, status espnStatus) models.PeriodType {
	detail := strings.ToUpper(status.Type.ShortDetail)
	switch {
	case strings.Contains(detail, "SO"):
		return models.PeriodShootout
	case strings.Contains(detail, "OT"), status.Period > regulationPeriods(sport):
		return models.PeriodOvertime
	default:
		return models.PeriodRegulation
	}
}

// FetchStandings returns each team's standing ranked by points, then wins
func (c *ESPNClient) FetchStandings(ctx context.Context, sport models.Sport) (map[string]Standing, error) {
	path, err := sportPath(sport)
	if err != nil {
		return nil, NewDataSourceError(espnSourceName, ErrCodeUnsupported, "unsupported sport", err)
	}
	var doc espnStandings
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/standings", c.baseURL, path), &doc); err != nil {
		return nil, err
	}

	var rows []Standing
	for _, group := range doc.Children {
		for _, entry := range group.Standings.Entries {
			s := Standing{Team: entry.Team.DisplayName, Conference: group.Name}
			for _, stat := range entry.Stats {
				switch stat.Name {
				case "points":
					s.Points = int(stat.Value)
				case "wins":
					s.Wins = int(stat.Value)
				case "losses":
					s.Losses = int(stat.Value)
				}
			}
			rows = append(rows, s)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].Team < rows[j].Team
	})

	out := make(map[string]Standing, len(rows))
	for i, s := range rows {
		s.Rank = i + 1
		out[s.Team] = s
	}
	return out, nil
}

func (c *ESPNClient) getJSON(ctx context.Context, url string, dst interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		metrics.RecordDataSourceRequest(espnSourceName, "error", time.Since(start).Seconds())
		return NewDataSourceError(espnSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer drain(resp.Body)
	metrics.RecordDataSourceRequest(espnSourceName, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(espnSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(espnSourceName, ErrCodeNotFound, url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewDataSourceError(espnSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return NewDataSourceError(espnSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}
