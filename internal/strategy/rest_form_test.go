package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/b2b-edge/internal/gamelog"
	"github.com/yourusername/b2b-edge/internal/models"
)

// MockLineupProvider is a mock implementation of LineupProvider
type MockLineupProvider struct {
	mock.Mock
}

func (m *MockLineupProvider) LineupSignals(ctx context.Context, game models.GameRecord, restedTeam, b2bTeam string) (*LineupSignals, error) {
	args := m.Called(ctx, game, restedTeam, b2bTeam)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LineupSignals), args.Error(1)
}

var nhlTiers = []models.TierInfo{
	{Name: models.TierS, Criteria: "Rested 4-5 wins in L5 AND 3+ win advantage", HistoricalWinRate: 68.2, SampleSize: 129},
	{Name: models.TierA, Criteria: "Rested 4-5 wins in L5 AND 2+ win advantage", HistoricalWinRate: 68.0, SampleSize: 153},
}

func jan(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func result(d int, home, away string, homeWon bool) models.GameRecord {
	g := models.GameRecord{Date: jan(d), Sport: models.SportNHL, HomeTeam: home, AwayTeam: away, Completed: true}
	if homeWon {
		g.HomeScore, g.AwayScore = 3, 1
	} else {
		g.HomeScore, g.AwayScore = 1, 3
	}
	return g
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func newTestStrategy(t *testing.T, lineups LineupProvider) *RestFormStrategy {
	t.Helper()
	return NewRestFormStrategy(PresetCanonical, mustClassifier(t, Canonical()), nhlTiers, 2.0, lineups, quietLogger())
}

// history builds a season where BOS is 5-0 and TOR is 1-4 going into Jan 20,
// and TOR also plays on Jan 19.
func history() *gamelog.Log {
	return gamelog.NewLog([]models.GameRecord{
		result(10, "BOS", "MTL", true),
		result(11, "OTT", "BOS", false),
		result(12, "BOS", "DET", true),
		result(13, "BUF", "BOS", false),
		result(14, "BOS", "NYR", true),
		result(10, "TOR", "NJD", false),
		result(12, "PHI", "TOR", true),
		result(14, "TOR", "CBJ", false),
		result(16, "PIT", "TOR", true),
		result(19, "TOR", "WSH", true),
	})
}

func TestEvaluateRestedHomeTierS(t *testing.T) {
	s := newTestStrategy(t, nil)
	tl := gamelog.NewTimeline(history(), gamelog.PlayedYesterday, 5)
	matchups := tl.Evaluate([]models.GameRecord{{Date: jan(20), Sport: models.SportNHL, HomeTeam: "BOS", AwayTeam: "TOR"}})

	signals, err := s.Evaluate(context.Background(), Context{Sport: models.SportNHL, Matchups: matchups, CurrentTime: jan(20)})
	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.True(t, s.ShouldBet(sig))
	assert.Equal(t, "BOS", sig.Pick)
	assert.Equal(t, "TOR", sig.Opponent)
	assert.True(t, sig.PickIsHome)
	assert.Equal(t, models.TierS, sig.Decision.Tier)
	assert.Equal(t, 4, sig.Decision.FormAdvantage)
	assert.Equal(t, 68.2, sig.WinRate)
	assert.InDelta(t, 0.364, sig.ExpectedValue, 1e-9)
}

func TestEvaluateRestedTeamBelowFormBand(t *testing.T) {
	// A plays Jan 1 and Jan 2 with a 5-0 record; B last played the previous week and is 2-3.
	games := []models.GameRecord{
		result(-10, "A", "X1", true),
		result(-9, "A", "X2", true),
		result(-8, "A", "X3", true),
		result(1, "A", "X4", true),
		result(-12, "B", "Y1", false),
		result(-11, "Y2", "B", true),
		result(-9, "B", "Y3", true),
		result(-7, "Y4", "B", true),
		result(-6, "B", "Y5", true),
	}
	games = append(games, result(-7, "A", "X5", true))
	s := newTestStrategy(t, nil)
	tl := gamelog.NewTimeline(gamelog.NewLog(games), gamelog.PlayedYesterday, 5)
	matchups := tl.Evaluate([]models.GameRecord{{Date: jan(2), Sport: models.SportNHL, HomeTeam: "B", AwayTeam: "A"}})
	require.Len(t, matchups, 1)
	require.True(t, matchups[0].AwayB2B)
	require.False(t, matchups[0].HomeB2B)

	signals, err := s.Evaluate(context.Background(), Context{Sport: models.SportNHL, Matchups: matchups})
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.False(t, s.ShouldBet(signals[0]))
	assert.Equal(t, "B", signals[0].Pick)
	assert.Equal(t, 2, signals[0].RestedForm.Wins)
	assert.Equal(t, 5, signals[0].B2BForm.Wins)
	assert.Equal(t, -3, signals[0].Decision.FormAdvantage)
	assert.Equal(t, models.TierNone, signals[0].Decision.Tier)
	assert.Equal(t, ReasonFormBelowThreshold, signals[0].Decision.Reason)
}

func TestEvaluateFiltersNoRestAdvantage(t *testing.T) {
	s := newTestStrategy(t, nil)
	matchups := []gamelog.Matchup{
		{Game: models.GameRecord{Date: jan(20), HomeTeam: "BOS", AwayTeam: "TOR"}, HomeRest: 3, AwayRest: 2},
		{Game: models.GameRecord{Date: jan(20), HomeTeam: "EDM", AwayTeam: "CGY"}, HomeRest: 1, AwayRest: 1, HomeB2B: true, AwayB2B: true},
	}

	signals, err := s.Evaluate(context.Background(), Context{Sport: models.SportNHL, Matchups: matchups})
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "EDM", signals[0].Game.HomeTeam)
	assert.Equal(t, ReasonNoRestAdvantage, signals[0].Decision.Reason)
	assert.False(t, s.ShouldBet(signals[0]))
}

func TestEvaluateAppliesLineupUpgrade(t *testing.T) {
	lineups := new(MockLineupProvider)
	s := newTestStrategy(t, lineups)
	m := gamelog.Matchup{
		Game:     models.GameRecord{Date: jan(20), Sport: models.SportNHL, HomeTeam: "BOS", AwayTeam: "TOR"},
		HomeRest: 1, AwayRest: 3, HomeB2B: true,
		HomeForm: gamelog.FormContext{Wins: 2, Games: 5},
		AwayForm: gamelog.FormContext{Wins: 4, Games: 5},
	}
	lineups.On("LineupSignals", mock.Anything, m.Game, "TOR", "BOS").Return(&LineupSignals{B2BBackupStarter: true}, nil)

	signals, err := s.Evaluate(context.Background(), Context{Sport: models.SportNHL, Matchups: []gamelog.Matchup{m}})
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, models.TierS, signals[0].Decision.Tier)
	assert.Equal(t, models.TierA, signals[0].Decision.BaseTier)
	assert.Contains(t, signals[0].Decision.Adjustments, AdjustmentUpgradeAToS)
	assert.Equal(t, 68.2, signals[0].WinRate)
	assert.False(t, signals[0].PickIsHome)
	lineups.AssertExpectations(t)
}

func TestEvaluateLineupFailureKeepsBaseTier(t *testing.T) {
	lineups := new(MockLineupProvider)
	s := newTestStrategy(t, lineups)
	m := gamelog.Matchup{
		Game:     models.GameRecord{Date: jan(20), Sport: models.SportNHL, HomeTeam: "BOS", AwayTeam: "TOR"},
		HomeRest: 3, AwayRest: 1, AwayB2B: true,
		HomeForm: gamelog.FormContext{Wins: 4, Games: 5},
		AwayForm: gamelog.FormContext{Wins: 2, Games: 5},
	}
	lineups.On("LineupSignals", mock.Anything, m.Game, "BOS", "TOR").Return(nil, errors.New("feed down"))

	signals, err := s.Evaluate(context.Background(), Context{Sport: models.SportNHL, Matchups: []gamelog.Matchup{m}})
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, models.TierA, signals[0].Decision.Tier)
	assert.Nil(t, signals[0].Lineup)
}

func TestEvaluateRejectsCompletedGames(t *testing.T) {
	s := newTestStrategy(t, nil)
	m := gamelog.Matchup{Game: result(20, "BOS", "TOR", true), HomeB2B: true}
	_, err := s.Evaluate(context.Background(), Context{Matchups: []gamelog.Matchup{m}, CurrentTime: jan(1)})
	assert.Error(t, err)
}

func TestEvaluateEmptyInput(t *testing.T) {
	s := newTestStrategy(t, nil)
	signals, err := s.Evaluate(context.Background(), Context{Sport: models.SportNHL})
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestGetParameters(t *testing.T) {
	s := newTestStrategy(t, nil)
	params := s.GetParameters()
	assert.Equal(t, PresetCanonical, params["preset"])
	assert.Equal(t, 3, params["min_advantage_s"])
	assert.Equal(t, "rest_form", s.Name())
}
