package gamelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/b2b-edge/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func played(d int, home, away string, hs, as int) models.GameRecord {
	return models.GameRecord{
		Date:       day(d),
		Sport:      models.SportNHL,
		Season:     "2023-24",
		HomeTeam:   home,
		AwayTeam:   away,
		HomeScore:  hs,
		AwayScore:  as,
		PeriodType: models.PeriodRegulation,
		Completed:  true,
	}
}

func scheduled(d int, home, away string) models.GameRecord {
	return models.GameRecord{Date: day(d), Sport: models.SportNHL, HomeTeam: home, AwayTeam: away}
}

func TestNewLogSortsStably(t *testing.T) {
	l := NewLog([]models.GameRecord{
		played(3, "BOS", "TOR", 3, 2),
		played(1, "NYR", "NJD", 1, 4),
		played(3, "EDM", "CGY", 2, 1),
		played(2, "VAN", "SEA", 5, 0),
	})

	games := l.Games()
	require.Len(t, games, 4)
	assert.Equal(t, "NYR", games[0].HomeTeam)
	assert.Equal(t, "VAN", games[1].HomeTeam)
	assert.Equal(t, "BOS", games[2].HomeTeam)
	assert.Equal(t, "EDM", games[3].HomeTeam)
}

func TestAppendKeepsOrder(t *testing.T) {
	l := NewLog([]models.GameRecord{played(1, "A", "B", 1, 0), played(5, "C", "D", 1, 0)})
	l.Append(played(3, "E", "F", 1, 0))
	l.Append(played(5, "G", "H", 1, 0))

	games := l.Games()
	require.Len(t, games, 4)
	assert.Equal(t, []string{"A", "E", "C", "G"}, []string{games[0].HomeTeam, games[1].HomeTeam, games[2].HomeTeam, games[3].HomeTeam})
}

func TestCursorWalksInOrder(t *testing.T) {
	l := NewLog([]models.GameRecord{played(2, "A", "B", 1, 0), played(1, "C", "D", 1, 0)})
	cur := l.Cursor()

	g, ok := cur.Next()
	require.True(t, ok)
	assert.Equal(t, "C", g.HomeTeam)
	g, ok = cur.Next()
	require.True(t, ok)
	assert.Equal(t, "A", g.HomeTeam)
	_, ok = cur.Next()
	assert.False(t, ok)
	assert.Equal(t, 2, cur.Position())
}

func TestRestDays(t *testing.T) {
	l := NewLog([]models.GameRecord{
		played(1, "BOS", "TOR", 3, 2),
		played(4, "TOR", "MTL", 2, 1),
	})

	tests := []struct {
		name     string
		team     string
		date     time.Time
		expected int
	}{
		{"no prior game", "EDM", day(5), NoPriorGame},
		{"played yesterday", "TOR", day(5), 1},
		{"four days rest", "BOS", day(5), 4},
		{"game on the date itself is excluded", "TOR", day(4), 3},
		{"first game of season", "MTL", day(4), NoPriorGame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RestDays(l, tt.team, tt.date))
		})
	}
}

func TestIsBackToBack(t *testing.T) {
	assert.True(t, IsBackToBack(1, PlayedYesterday))
	assert.False(t, IsBackToBack(0, PlayedYesterday))
	assert.False(t, IsBackToBack(2, PlayedYesterday))
	assert.False(t, IsBackToBack(NoPriorGame, PlayedYesterday))
	assert.True(t, IsBackToBack(0, SameDay))
	assert.False(t, IsBackToBack(1, SameDay))
}

func TestRestTracker(t *testing.T) {
	rt := NewRestTracker()
	assert.Equal(t, NoPriorGame, rt.RestDays("BOS", day(3)))

	rt.Observe(played(2, "BOS", "TOR", 1, 0))
	assert.Equal(t, 1, rt.RestDays("BOS", day(3)))
	assert.Equal(t, 1, rt.RestDays("TOR", day(3)))

	// An older game never moves the last-played date backwards
	rt.Observe(played(1, "BOS", "NYR", 1, 0))
	last, ok := rt.LastPlayed("BOS")
	require.True(t, ok)
	assert.Equal(t, day(2), last)
}

func TestRestTrackerMatchesRecomputation(t *testing.T) {
	// date ordered, with several dates carrying more than one game
	games := []models.GameRecord{
		played(1, "BOS", "TOR", 3, 2),
		played(1, "EDM", "CGY", 2, 1),
		played(2, "TOR", "MTL", 1, 4),
		played(3, "BOS", "EDM", 2, 3),
		played(3, "MTL", "CGY", 5, 1),
		played(3, "VAN", "SEA", 0, 2),
		played(4, "TOR", "BOS", 3, 1),
		played(4, "SEA", "EDM", 2, 2),
		played(6, "CGY", "VAN", 4, 3),
		played(7, "BOS", "MTL", 1, 0),
		played(7, "EDM", "TOR", 2, 5),
		played(8, "SEA", "BOS", 3, 4),
		played(12, "VAN", "TOR", 1, 2),
	}

	rt := NewRestTracker()
	for i, g := range games {
		prefix := NewLog(games[:i])
		for _, team := range []string{g.HomeTeam, g.AwayTeam} {
			assert.Equal(t, RestDays(prefix, team, g.Date), rt.RestDays(team, g.Date),
				"%s before game %d on %s", team, i, g.Date.Format(models.DateLayout))
		}
		rt.Observe(g)
	}
}

func TestForm(t *testing.T) {
	l := NewLog([]models.GameRecord{
		played(1, "BOS", "TOR", 3, 2), // BOS W
		played(2, "TOR", "BOS", 4, 1), // BOS L
		played(3, "BOS", "MTL", 2, 1), // BOS W
		played(4, "OTT", "BOS", 0, 3), // BOS W
		played(5, "BOS", "DET", 5, 2), // BOS W
		played(6, "BUF", "BOS", 2, 1), // BOS L
		played(7, "BOS", "FLA", 4, 0), // BOS W, on the query date
	})

	t.Run("last five before date", func(t *testing.T) {
		fc := Form(l, "BOS", day(7), 5)
		assert.Equal(t, FormContext{Wins: 3, Games: 5}, fc)
		assert.Equal(t, "3-2", fc.Record())
	})

	t.Run("fewer prior games than window", func(t *testing.T) {
		assert.Equal(t, FormContext{Wins: 1, Games: 2}, Form(l, "BOS", day(3), 5))
	})

	t.Run("no history", func(t *testing.T) {
		assert.Equal(t, FormContext{}, Form(l, "EDM", day(7), 5))
	})

	t.Run("away win counts", func(t *testing.T) {
		assert.Equal(t, FormContext{Wins: 1, Games: 1}, Form(l, "BOS", day(5), 1))
		assert.Equal(t, FormContext{Wins: 0, Games: 1}, Form(l, "OTT", day(5), 5))
	})

	t.Run("unplayed games are ignored", func(t *testing.T) {
		l2 := NewLog(append(l.Games(), scheduled(8, "BOS", "NYR")))
		assert.Equal(t, Form(l, "BOS", day(8), 5), Form(l2, "BOS", day(9), 5))
	})
}

func TestTimelineFoldsUpcomingGames(t *testing.T) {
	history := NewLog([]models.GameRecord{
		played(1, "BOS", "TOR", 3, 2),
	})
	tl := NewTimeline(history, PlayedYesterday, 5)

	matchups := tl.Evaluate([]models.GameRecord{
		scheduled(11, "TOR", "NYR"),
		scheduled(10, "BOS", "MTL"),
		scheduled(11, "BOS", "DET"),
	})

	require.Len(t, matchups, 3)
	assert.Equal(t, "MTL", matchups[0].Game.AwayTeam)
	assert.Equal(t, 9, matchups[0].HomeRest)

	// TOR@NYR on day 11: NYR has never played, TOR last played day 1
	assert.Equal(t, 10, matchups[1].HomeRest)
	assert.Equal(t, NoPriorGame, matchups[1].AwayRest)
	assert.False(t, matchups[1].HasRestAdvantage())

	// BOS played day 10 in the window, so day 11 is a back-to-back
	assert.Equal(t, 1, matchups[2].HomeRest)
	assert.True(t, matchups[2].HomeB2B)
	assert.False(t, matchups[2].AwayB2B)
	assert.True(t, matchups[2].HasRestAdvantage())
	assert.Equal(t, RestAdvantageAway, matchups[2].Advantage())
	assert.Equal(t, FormContext{Wins: 1, Games: 1}, matchups[2].HomeForm)
}

func TestReplay(t *testing.T) {
	l := NewLog([]models.GameRecord{
		played(1, "BOS", "TOR", 3, 2),
		played(2, "BOS", "MTL", 1, 2),
		scheduled(3, "BOS", "NYR"),
	})

	var seen []Matchup
	Replay(l, PlayedYesterday, 5, func(m Matchup) { seen = append(seen, m) })

	require.Len(t, seen, 2)
	assert.Equal(t, NoPriorGame, seen[0].HomeRest)
	assert.True(t, seen[1].HomeB2B)
	assert.Equal(t, FormContext{Wins: 1, Games: 1}, seen[1].HomeForm)
}

func TestRecords(t *testing.T) {
	overtime := played(3, "BOS", "TOR", 3, 4)
	overtime.PeriodType = models.PeriodOvertime
	l := NewLog([]models.GameRecord{
		played(1, "BOS", "TOR", 3, 2),
		played(2, "BOS", "MTL", 4, 1),
		overtime,
	})

	records := Records(l, day(10))
	bos := records["BOS"]
	assert.Equal(t, 2, bos.Wins)
	assert.Equal(t, 1, bos.OTLosses)
	assert.Equal(t, -1, bos.Streak)
	assert.Equal(t, "L1", bos.StreakLabel())
	assert.Equal(t, 5, bos.Points())

	tor := records["TOR"]
	assert.Equal(t, 1, tor.Wins)
	assert.Equal(t, 1, tor.Losses)
	assert.Equal(t, "W1", tor.StreakLabel())
}
