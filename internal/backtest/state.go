package backtest

// simulationState tracks bankroll during one Kelly simulation
type simulationState struct {
	CurrentBankroll float64
	PeakBankroll    float64
	Returns         []float64
	EquityCurve     EquityCurve
}

func newSimulationState(initialBankroll float64) *simulationState {
	state := &simulationState{
		CurrentBankroll: initialBankroll,
		PeakBankroll:    initialBankroll,
	}
	state.recordEquityPoint(initialBankroll)
	return state
}

// settle applies one bet's profit and records the per-unit return
func (s *simulationState) settle(stake, profit float64) {
	s.CurrentBankroll += profit
	if s.CurrentBankroll > s.PeakBankroll {
		s.PeakBankroll = s.CurrentBankroll
	}
	if stake > 0 {
		s.Returns = append(s.Returns, profit/stake)
	}
	s.recordEquityPoint(s.CurrentBankroll)
}

func (s *simulationState) bets() int {
	return len(s.Returns)
}

func (s *simulationState) recordEquityPoint(value float64) {
	drawdown := 0.0
	if value < s.PeakBankroll && s.PeakBankroll > 0 {
		drawdown = (s.PeakBankroll - value) / s.PeakBankroll
	}
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		BetNumber: len(s.Returns),
		Value:     value,
		Drawdown:  drawdown,
	})
}
