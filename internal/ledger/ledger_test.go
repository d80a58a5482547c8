package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/b2b-edge/internal/models"
	"github.com/yourusername/b2b-edge/internal/staking"
)

// memoryStore is an in-memory Store whose Save can be made to fail
type memoryStore struct {
	state   *models.LedgerState
	saves   int
	failErr error
}

func (m *memoryStore) Load(ctx context.Context) (*models.LedgerState, error) {
	if m.state == nil {
		return nil, models.ErrNotFound
	}
	return m.state.Clone(), nil
}

func (m *memoryStore) Save(ctx context.Context, state *models.LedgerState) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.state = state.Clone()
	return nil
}

var testTiers = TierTables{
	models.SportNHL: {
		{Name: models.TierS, HistoricalWinRate: 68.2, SampleSize: 129},
		{Name: models.TierA, HistoricalWinRate: 68.0, SampleSize: 153},
	},
	models.SportNBA: {
		{Name: models.TierS, HistoricalWinRate: 76.0, SampleSize: 263},
	},
}

func testGame(day int, home, away string) models.GameRecord {
	return models.GameRecord{
		Date:     time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC),
		Sport:    models.SportNHL,
		HomeTeam: home,
		AwayTeam: away,
	}
}

func openTestLedger(t *testing.T, store Store) *Ledger {
	t.Helper()
	sizer, err := staking.NewSizer(staking.DefaultConfig(), nil)
	require.NoError(t, err)
	l, err := Open(context.Background(), store, sizer, testTiers, Options{InitialBankroll: 1000}, nil)
	require.NoError(t, err)
	return l
}

func TestOpenInitialisesAndPersists(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)

	current, initial := l.Bankroll()
	assert.Equal(t, 1000.0, current)
	assert.Equal(t, 1000.0, initial)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 0, l.Len())
}

func TestAddWagerSizesWithStaticWinRate(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")

	ok, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0, FormAdvantage: 4, RestedWins: 5, B2BWins: 1})
	require.NoError(t, err)
	require.True(t, ok)

	w, found := l.Get(game.Key())
	require.True(t, found)
	assert.Equal(t, 91.0, w.Stake)
	assert.Equal(t, 68.2, w.EdgePercent)
	assert.Equal(t, 1000.0, w.BankrollBefore)
	assert.Equal(t, models.WagerResultPending, w.Result)
	assert.Equal(t, "2024-01-02", w.Date)
	assert.Equal(t, 2, store.saves)
	assert.Len(t, store.state.Bets, 1)
}

func TestAddWagerRejectsDuplicate(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	c := Candidate{Game: testGame(2, "BOS", "TOR"), Pick: "BOS", Tier: models.TierS, Odds: 2.0}

	ok, err := l.AddWager(context.Background(), c)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.AddWager(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
	current, _ := l.Bankroll()
	assert.Equal(t, 1000.0, current)

	// Still refused after settlement
	_, err = l.Settle(context.Background(), c.Game.Key(), true)
	require.NoError(t, err)
	ok, err = l.AddWager(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddWagerRejectsZeroStake(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)

	// Tier B has no entry in the NHL table, so its win rate is zero
	ok, err := l.AddWager(context.Background(), Candidate{Game: testGame(2, "BOS", "TOR"), Pick: "BOS", Tier: models.TierB, Odds: 2.0})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 1, store.saves)
}

func TestAddWagerRejectsPickOutsideGame(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")

	for _, pick := range []string{"EDM", ""} {
		ok, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: pick, Tier: models.TierS, Odds: 2.0})
		require.NoError(t, err)
		assert.False(t, ok, "pick %q", pick)
	}
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 1, store.saves)

	settled, err := l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)
	assert.False(t, settled)
	current, _ := l.Bankroll()
	assert.Equal(t, 1000.0, current)
}

func TestAddWagerRejectsInvalidWagerFields(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")
	game.Sport = ""

	// a tier table for the empty sport lets sizing succeed
	l.tiers[""] = l.tiers[models.SportNHL]
	ok, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 1, store.saves)
}

func TestAddWagerUsesDefaultOdds(t *testing.T) {
	l := openTestLedger(t, &memoryStore{})
	game := testGame(2, "BOS", "TOR")

	ok, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS})
	require.NoError(t, err)
	require.True(t, ok)
	w, _ := l.Get(game.Key())
	assert.Equal(t, 2.0, w.Odds)
}

func TestSettleWinUpdatesBankroll(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")
	_, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	require.NoError(t, err)

	ok, err := l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)
	require.True(t, ok)

	w, _ := l.Get(game.Key())
	assert.Equal(t, models.WagerResultWon, w.Result)
	assert.Equal(t, 91.0, w.Profit)
	require.NotNil(t, w.SettledAt)

	current, _ := l.Bankroll()
	assert.Equal(t, 1091.0, current)
	assert.Equal(t, 1091.0, store.state.CurrentBankroll)
}

func TestSettleAwayPickLoss(t *testing.T) {
	l := openTestLedger(t, &memoryStore{})
	game := testGame(2, "BOS", "TOR")
	_, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "TOR", Tier: models.TierA, Odds: 2.0})
	require.NoError(t, err)

	ok, err := l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)
	require.True(t, ok)

	w, _ := l.Get(game.Key())
	assert.Equal(t, models.WagerResultLost, w.Result)
	assert.Equal(t, -90.0, w.Profit)
	current, _ := l.Bankroll()
	assert.Equal(t, 910.0, current)
}

func TestSettleIsIdempotent(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")
	_, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	require.NoError(t, err)

	ok, err := l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)
	require.True(t, ok)
	saves := store.saves

	ok, err = l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)
	assert.False(t, ok)
	current, _ := l.Bankroll()
	assert.Equal(t, 1091.0, current)
	assert.Equal(t, saves, store.saves)

	ok, err = l.Settle(context.Background(), testGame(3, "NYR", "NJD").Key(), false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	store := &memoryStore{}
	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")

	store.failErr = errors.New("disk full")
	ok, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())

	store.failErr = nil
	ok, err = l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	require.NoError(t, err)
	require.True(t, ok)

	store.failErr = errors.New("disk full")
	ok, err = l.Settle(context.Background(), game.Key(), true)
	require.Error(t, err)
	assert.False(t, ok)
	w, _ := l.Get(game.Key())
	assert.True(t, w.IsPending())
	assert.Nil(t, w.SettledAt)
	current, _ := l.Bankroll()
	assert.Equal(t, 1000.0, current)

	store.failErr = nil
	ok, err = l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLiveWinRateReplacesStatic(t *testing.T) {
	store := &memoryStore{}
	sizer, err := staking.NewSizer(staking.DefaultConfig(), nil)
	require.NoError(t, err)
	l, err := Open(context.Background(), store, sizer, testTiers, Options{InitialBankroll: 1000, LiveWinRateMinSample: 4}, nil)
	require.NoError(t, err)

	for day := 1; day <= 4; day++ {
		game := testGame(day, "BOS", "TOR")
		_, err := l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0})
		require.NoError(t, err)

		rate, live := l.WinRateFor(models.SportNHL, models.TierS)
		assert.False(t, live)
		assert.Equal(t, 68.2, rate)

		_, err = l.Settle(context.Background(), game.Key(), day != 4)
		require.NoError(t, err)
	}

	rate, live := l.WinRateFor(models.SportNHL, models.TierS)
	assert.True(t, live)
	assert.Equal(t, 75.0, rate)

	rate, live = l.WinRateFor(models.SportNBA, models.TierS)
	assert.False(t, live)
	assert.Equal(t, 76.0, rate)
}

func TestSummaryEmptyLedger(t *testing.T) {
	l := openTestLedger(t, &memoryStore{})

	assert.Equal(t, Summary{}, l.Summary(""))
	assert.Empty(t, l.TierPerformance(""))
	assert.Empty(t, l.SportPerformance())

	_, err := l.AddWager(context.Background(), Candidate{Game: testGame(2, "BOS", "TOR"), Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, l.Summary(models.SportNHL))
}

func TestSummaryAggregates(t *testing.T) {
	l := openTestLedger(t, &memoryStore{})
	ctx := context.Background()

	nhlWin := testGame(2, "BOS", "TOR")
	nhlLoss := testGame(3, "EDM", "CGY")
	nbaWin := testGame(3, "LAL", "BOS")
	nbaWin.Sport = models.SportNBA

	for _, c := range []Candidate{
		{Game: nhlWin, Pick: "BOS", Tier: models.TierS, Odds: 2.0},
		{Game: nhlLoss, Pick: "EDM", Tier: models.TierA, Odds: 2.0},
		{Game: nbaWin, Pick: "LAL", Tier: models.TierS, Odds: 2.0},
	} {
		ok, err := l.AddWager(ctx, c)
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, err := l.Settle(ctx, nhlWin.Key(), true)
	require.NoError(t, err)
	_, err = l.Settle(ctx, nhlLoss.Key(), false)
	require.NoError(t, err)

	nhl := l.Summary(models.SportNHL)
	assert.Equal(t, 2, nhl.TotalBets)
	assert.Equal(t, 1, nhl.Wins)
	assert.Equal(t, 1, nhl.Losses)
	assert.Equal(t, 50.0, nhl.WinRate)

	all := l.Summary("")
	assert.Equal(t, 2, all.TotalBets)

	tiers := l.TierPerformance(models.SportNHL)
	require.Contains(t, tiers, models.TierS)
	require.Contains(t, tiers, models.TierA)
	assert.Equal(t, 100.0, tiers[models.TierS].WinRate)
	assert.Equal(t, 100.0, tiers[models.TierS].ROI)
	assert.Equal(t, -100.0, tiers[models.TierA].ROI)

	sports := l.SportPerformance()
	assert.Len(t, sports, 1)
	assert.Len(t, l.Pending(), 1)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "tracker.json")
	store := NewFileStore(path)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)

	l := openTestLedger(t, store)
	game := testGame(2, "BOS", "TOR")
	_, err = l.AddWager(context.Background(), Candidate{Game: game, Pick: "BOS", Tier: models.TierS, Odds: 2.0, Adjustments: []string{"upgraded A to S"}})
	require.NoError(t, err)
	_, err = l.Settle(context.Background(), game.Key(), true)
	require.NoError(t, err)

	reopened := openTestLedger(t, NewFileStore(path))
	current, initial := reopened.Bankroll()
	assert.Equal(t, 1091.0, current)
	assert.Equal(t, 1000.0, initial)

	w, ok := reopened.Get(game.Key())
	require.True(t, ok)
	assert.Equal(t, models.WagerResultWon, w.Result)
	assert.Equal(t, 91.0, w.Stake)
	assert.Equal(t, []string{"upgraded A to S"}, w.Adjustments)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"current_bankroll": 1091`)
	assert.Contains(t, string(raw), `"date": "2024-01-02"`)
	assert.Contains(t, string(raw), `"bet_amount": 91`)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	sizer, err := staking.NewSizer(staking.DefaultConfig(), nil)
	require.NoError(t, err)
	_, err = Open(context.Background(), NewFileStore(path), sizer, testTiers, Options{InitialBankroll: 1000}, nil)
	assert.Error(t, err)
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	store := NewFileStore(path)
	l := openTestLedger(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := l.AddWager(ctx, Candidate{Game: testGame(2, "BOS", "TOR"), Pick: "BOS", Tier: models.TierS, Odds: 2.0})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Bets)
}
