package staking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSizer(t *testing.T) *Sizer {
	t.Helper()
	s, err := NewSizer(DefaultConfig(), nil)
	require.NoError(t, err)
	return s
}

func TestSize(t *testing.T) {
	s := newTestSizer(t)

	tests := []struct {
		name     string
		winRate  float64
		odds     float64
		bankroll float64
		expected float64
	}{
		{"tier S at even money", 68.2, 2.0, 1000, 91.00},
		{"tier A at even money", 68.0, 2.0, 1000, 90.00},
		{"coin flip is no bet", 50, 2.0, 1000, 0},
		{"losing edge is no bet", 45, 2.0, 1000, 0},
		{"capped at maximum", 80, 2.0, 100000, 1000},
		{"invalid odds", 70, 1.0, 1000, 0},
		{"empty bankroll", 70, 2.0, 0, 0},
		{"rounded to cents", 61.1, 1.91, 1234.56, 56.64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Size(tt.winRate, tt.odds, tt.bankroll))
		})
	}
}

func TestSizeClampsWinRate(t *testing.T) {
	s := newTestSizer(t)
	atCeiling := s.Size(85, 2.0, 2000)
	assert.Equal(t, atCeiling, s.Size(92, 2.0, 2000))
	assert.Equal(t, atCeiling, s.Size(100, 2.0, 2000))
	assert.Equal(t, 350.0, atCeiling)
}

func TestSizeNeverExceedsCap(t *testing.T) {
	s := newTestSizer(t)
	for wr := 0.0; wr <= 100; wr += 2.5 {
		for _, bankroll := range []float64{10, 1000, 50000, 1e7} {
			stake := s.Size(wr, 1.9, bankroll)
			assert.LessOrEqual(t, stake, DefaultMaxStake)
			assert.GreaterOrEqual(t, stake, 0.0)
			if wr <= 50 {
				assert.Zero(t, stake)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	_, err := NewSizer(Config{KellyFraction: 0, MaxStake: 1000, WinRateCeiling: 85}, nil)
	assert.Error(t, err)
	_, err = NewSizer(Config{KellyFraction: 0.25, MaxStake: 0, WinRateCeiling: 85}, nil)
	assert.Error(t, err)
	_, err = NewSizer(Config{KellyFraction: 0.25, MaxStake: 1000, WinRateCeiling: 120}, nil)
	assert.Error(t, err)
}

func TestProfit(t *testing.T) {
	assert.Equal(t, 91.0, Profit(91, 2.0, true))
	assert.Equal(t, -91.0, Profit(91, 2.0, false))
	assert.Equal(t, 82.81, Profit(91, 1.91, true))
	assert.Equal(t, 1091.0, AddMoney(1000, 91))
	assert.Equal(t, 0.3, AddMoney(0.1, 0.2))
}
