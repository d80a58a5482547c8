package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/b2b-edge/internal/models"
)

func testHTTPClient(breakerMax int) *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      time.Millisecond,
		RateLimit:         1000,
		Burst:             10,
		CircuitBreakerMax: breakerMax,
	}, nil)
}

func newTestESPN(t *testing.T, handler http.HandlerFunc) *ESPNClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewESPNClient(testHTTPClient(5), server.URL, 2, nil)
}

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

const scoreboardOct1 = `{"events":[
 {"id":"1","season":{"year":2026,"type":2},"competitions":[{
   "competitors":[
     {"homeAway":"home","score":"4","team":{"displayName":"Boston Bruins","abbreviation":"BOS"}},
     {"homeAway":"away","score":"3","team":{"displayName":"Chicago Blackhawks","abbreviation":"CHI"}}],
   "status":{"period":4,"type":{"completed":true,"shortDetail":"Final/OT"}}}]},
 {"id":"2","season":{"year":2026,"type":1},"competitions":[{
   "competitors":[
     {"homeAway":"home","score":"1","team":{"displayName":"Dallas Stars"}},
     {"homeAway":"away","score":"0","team":{"displayName":"Utah Mammoth"}}],
   "status":{"period":3,"type":{"completed":true,"shortDetail":"Final"}}}]}
]}`

const scoreboardOct4 = `{"events":[
 {"id":"3","season":{"year":2026,"type":2},"competitions":[{
   "competitors":[
     {"homeAway":"away","score":"0","team":{"displayName":"Boston Bruins"}},
     {"homeAway":"home","score":"0","team":{"displayName":"Dallas Stars"}}],
   "status":{"period":0,"type":{"completed":false,"shortDetail":"10/4 - 7:00 PM EDT"}}}]}
]}`

func TestSeasonWindow(t *testing.T) {
	start, end, err := SeasonWindow("2026")
	require.NoError(t, err)
	assert.Equal(t, date("2025-10-01"), start)
	assert.Equal(t, date("2026-06-30"), end)

	_, _, err = SeasonWindow("2025-26")
	assert.Error(t, err)
}

func TestESPNFetchDay(t *testing.T) {
	client := newTestESPN(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hockey/nhl/scoreboard", r.URL.Path)
		assert.Equal(t, "20251001", r.URL.Query().Get("dates"))
		fmt.Fprint(w, scoreboardOct1)
	})

	games, err := client.FetchDay(context.Background(), models.SportNHL, date("2025-10-01"))
	require.NoError(t, err)
	require.Len(t, games, 1, "preseason event is skipped")

	g := games[0]
	assert.Equal(t, date("2025-10-01"), g.Date)
	assert.Equal(t, "Boston Bruins", g.HomeTeam)
	assert.Equal(t, "Chicago Blackhawks", g.AwayTeam)
	assert.Equal(t, 4, g.HomeScore)
	assert.Equal(t, 3, g.AwayScore)
	assert.Equal(t, models.PeriodOvertime, g.PeriodType)
	assert.True(t, g.Completed)
}

func TestESPNFetchDaySkipsUnreadableScore(t *testing.T) {
	client := newTestESPN(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events":[
 {"id":"4","season":{"year":2026,"type":2},"competitions":[{
   "competitors":[
     {"homeAway":"home","score":"","team":{"displayName":"Boston Bruins"}},
     {"homeAway":"away","score":"2","team":{"displayName":"Chicago Blackhawks"}}],
   "status":{"period":3,"type":{"completed":true,"shortDetail":"Final"}}}]},
 {"id":"5","season":{"year":2026,"type":2},"competitions":[{
   "competitors":[
     {"homeAway":"home","score":"3","team":{"displayName":"Dallas Stars"}},
     {"homeAway":"away","score":"two","team":{"displayName":"Utah Mammoth"}}],
   "status":{"period":3,"type":{"completed":true,"shortDetail":"Final"}}}]},
 {"id":"6","season":{"year":2026,"type":2},"competitions":[{
   "competitors":[
     {"homeAway":"home","score":"","team":{"displayName":"Seattle Kraken"}},
     {"homeAway":"away","score":"","team":{"displayName":"Vancouver Canucks"}}],
   "status":{"period":0,"type":{"completed":false,"shortDetail":"7:00 PM"}}}]}
]}`)
	})

	games, err := client.FetchDay(context.Background(), models.SportNHL, date("2025-10-01"))
	require.NoError(t, err)
	require.Len(t, games, 1, "completed events with unreadable scores are skipped")
	assert.Equal(t, "Seattle Kraken", games[0].HomeTeam)
	assert.False(t, games[0].Completed)
}

func TestPeriodType(t *testing.T) {
	tests := []struct {
		name   string
		sport  models.Sport
		detail string
		period int
		want   models.PeriodType
	}{
		{"regulation", models.SportNHL, "Final", 3, models.PeriodRegulation},
		{"overtime label", models.SportNHL, "Final/OT", 4, models.PeriodOvertime},
		{"shootout", models.SportNHL, "Final/SO", 5, models.PeriodShootout},
		{"nba fourth quarter", models.SportNBA, "Final", 4, models.PeriodRegulation},
		{"nba extra period", models.SportNBA, "Final", 5, models.PeriodOvertime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st espnStatus
			st.Period = tt.period
			st.Type.ShortDetail = tt.detail
			assert.Equal(t, tt.want, periodType(tt.sport, st))
		})
	}
}

func TestESPNFetchSeason(t *testing.T) {
	var requests int32
	client := newTestESPN(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		switch r.URL.Query().Get("dates") {
		case "20251001":
			fmt.Fprint(w, scoreboardOct1)
		case "20251004":
			fmt.Fprint(w, scoreboardOct4)
		default:
			fmt.Fprint(w, `{"events":[]}`)
		}
	})
	client.now = func() time.Time { return time.Date(2025, 10, 3, 15, 0, 0, 0, time.UTC) }

	data, err := client.FetchSeason(context.Background(), models.SportNHL, "2026")
	require.NoError(t, err)

	assert.Equal(t, int32(5), atomic.LoadInt32(&requests), "season start through today+2")
	require.Len(t, data.Completed, 1)
	require.Len(t, data.Upcoming, 1)
	assert.Equal(t, "2026", data.Completed[0].Season)
	assert.Equal(t, "Dallas Stars", data.Upcoming[0].HomeTeam)
	assert.False(t, data.Upcoming[0].Completed)
	assert.Equal(t, 1, data.History().Len())
	assert.Len(t, data.UpcomingWithin(date("2025-10-03"), 1), 1)
	assert.Empty(t, data.UpcomingWithin(date("2025-10-05"), 1))
}

func TestESPNFetchStandings(t *testing.T) {
	client := newTestESPN(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/basketball/nba/standings", r.URL.Path)
		fmt.Fprint(w, `{"children":[
		 {"name":"Eastern Conference","standings":{"entries":[
		   {"team":{"displayName":"Atlanta Hawks"},"stats":[{"name":"wins","value":20},{"name":"losses","value":10}]},
		   {"team":{"displayName":"Boston Celtics"},"stats":[{"name":"wins","value":22},{"name":"losses","value":8}]}]}},
		 {"name":"Western Conference","standings":{"entries":[
		   {"team":{"displayName":"Denver Nuggets"},"stats":[{"name":"wins","value":20},{"name":"losses","value":9}]}]}}]}`)
	})

	standings, err := client.FetchStandings(context.Background(), models.SportNBA)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	assert.Equal(t, 1, standings["Boston Celtics"].Rank)
	assert.Equal(t, 2, standings["Atlanta Hawks"].Rank, "ties broken by team name")
	assert.Equal(t, 3, standings["Denver Nuggets"].Rank)
	assert.Equal(t, "Western Conference", standings["Denver Nuggets"].Conference)
	assert.Equal(t, 9, standings["Denver Nuggets"].Losses)
}

func TestESPNStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantErr  error
	}{
		{"rate limited", http.StatusTooManyRequests, "", ErrCodeRateLimitExceeded, ErrRateLimitExceeded},
		{"not found", http.StatusNotFound, "", ErrCodeNotFound, ErrNotFound},
		{"server error", http.StatusInternalServerError, "boom", ErrCodeServerError, nil},
		{"bad json", http.StatusOK, "{not json", ErrCodeInvalidData, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestESPN(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.FetchDay(context.Background(), models.SportNHL, date("2025-10-01"))
			require.Error(t, err)
			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.wantCode, dsErr.Code)
			assert.Equal(t, "espn", dsErr.Source)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestESPNUnsupportedSport(t *testing.T) {
	client := newTestESPN(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := client.FetchDay(context.Background(), models.Sport("MLB"), date("2025-10-01"))
	assert.ErrorIs(t, err, models.ErrUnknownSport)
}

func TestCircuitBreakerOpens(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	httpClient := testHTTPClient(2)
	client := NewESPNClient(httpClient, server.URL, 0, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.FetchDay(ctx, models.SportNHL, date("2025-10-01"))
		require.Error(t, err)
	}
	assert.True(t, httpClient.IsOpen())

	_, err := client.FetchDay(ctx, models.SportNHL, date("2025-10-01"))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	httpClient.Reset()
	assert.False(t, httpClient.IsOpen())
}

const sampleCSV = `date,season,home,away,home_score,away_score,ot_so
2025-10-07,2026,Boston Bruins,Chicago Blackhawks,4,3,OT
2025-10-08,2026,Dallas Stars,Boston Bruins,2,1,
2025-10-09,2025,Old Home,Old Away,1,0,SO
2025-10-20,2026,Boston Bruins,Dallas Stars,,,
`

func TestReadGames(t *testing.T) {
	games, err := ReadGames(strings.NewReader(sampleCSV), models.SportNHL)
	require.NoError(t, err)
	require.Len(t, games, 4)

	assert.Equal(t, models.PeriodOvertime, games[0].PeriodType)
	assert.Equal(t, models.PeriodRegulation, games[1].PeriodType)
	assert.Equal(t, models.PeriodShootout, games[2].PeriodType)
	assert.True(t, games[1].Completed)
	assert.False(t, games[3].Completed)
	assert.Equal(t, models.SportNHL, games[3].Sport)
}

func TestReadGamesInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing column", "date,home\n2025-10-07,Boston Bruins\n"},
		{"bad date", "date,home,away\n10/07/2025,A,B\n"},
		{"bad score", "date,home,away,home_score,away_score\n2025-10-07,A,B,x,1\n"},
		{"same team", "date,home,away\n2025-10-07,A,A\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGames(strings.NewReader(tt.body), models.SportNHL)
			assert.Error(t, err)
		})
	}
}

func TestCSVSourceFetchSeason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nhl.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	src := NewCSVSource(map[models.Sport]string{models.SportNHL: path}, nil)
	src.now = func() time.Time { return date("2025-10-10") }

	data, err := src.FetchSeason(context.Background(), models.SportNHL, "2026")
	require.NoError(t, err)
	assert.Len(t, data.Completed, 2)
	assert.Len(t, data.Upcoming, 1)
	assert.Equal(t, "csv", src.Name())

	_, err = src.FetchSeason(context.Background(), models.SportNBA, "2026")
	assert.ErrorIs(t, err, ErrNotFound)
}

type mockScheduleSource struct {
	mock.Mock
}

func (m *mockScheduleSource) FetchSeason(ctx context.Context, sport models.Sport, season string) (*SeasonData, error) {
	args := m.Called(ctx, sport, season)
	data, _ := args.Get(0).(*SeasonData)
	return data, args.Error(1)
}

func (m *mockScheduleSource) Name() string {
	return "mock"
}

func TestSeasonCacheTTL(t *testing.T) {
	ctx := context.Background()
	src := new(mockScheduleSource)
	first := &SeasonData{Sport: models.SportNHL, Season: "2026"}
	second := &SeasonData{Sport: models.SportNHL, Season: "2026", Upcoming: []models.GameRecord{{}}}
	src.On("FetchSeason", ctx, models.SportNHL, "2026").Return(first, nil).Once()
	src.On("FetchSeason", ctx, models.SportNHL, "2026").Return(second, nil).Once()

	c := NewSeasonCache(src, time.Hour, nil)
	key := SeasonKey{Sport: models.SportNHL, Season: "2026"}
	t0 := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	got, err := c.GetOrRefresh(ctx, key, t0)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = c.GetOrRefresh(ctx, key, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Same(t, first, got, "fresh entry served from cache")

	got, err = c.GetOrRefresh(ctx, key, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Same(t, second, got, "entry at exactly ttl is stale")

	entry, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, t0.Add(time.Hour), entry.FetchedAt)
	assert.Equal(t, time.Hour, entry.TTL)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
	src.AssertExpectations(t)
}

func TestSeasonCacheStaleFallback(t *testing.T) {
	ctx := context.Background()
	src := new(mockScheduleSource)
	data := &SeasonData{Sport: models.SportNBA, Season: "2025"}
	fetchErr := NewDataSourceError("mock", ErrCodeServerError, "down", nil)
	src.On("FetchSeason", ctx, models.SportNBA, "2025").Return(data, nil).Once()
	src.On("FetchSeason", ctx, models.SportNBA, "2025").Return(nil, fetchErr)

	c := NewSeasonCache(src, time.Minute, nil)
	key := SeasonKey{Sport: models.SportNBA, Season: "2025"}
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.GetOrRefresh(ctx, key, t0)
	require.NoError(t, err)

	got, err := c.GetOrRefresh(ctx, key, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Same(t, data, got)

	c.Invalidate(key)
	_, err = c.GetOrRefresh(ctx, key, t0.Add(2*time.Hour))
	require.Error(t, err)
	var dsErr DataSourceError
	assert.True(t, errors.As(err, &dsErr))
}

func TestCacheEntryFresh(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, CacheEntry{}.Fresh(now))
	entry := CacheEntry{Value: &SeasonData{}, FetchedAt: now, TTL: time.Second}
	assert.True(t, entry.Fresh(now.Add(999*time.Millisecond)))
	assert.False(t, entry.Fresh(now.Add(time.Second)))
	assert.Equal(t, "NHL:2026", SeasonKey{Sport: models.SportNHL, Season: "2026"}.String())
}
