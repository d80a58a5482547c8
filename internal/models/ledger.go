package models

// LedgerState is the full persisted ledger: every wager plus the bankroll
type LedgerState struct {
	Bets            []*Wager `json:"bets"`
	CurrentBankroll float64  `json:"current_bankroll"`
	InitialBankroll float64  `json:"initial_bankroll"`
}

// Clone returns a deep copy so callers cannot mutate ledger internals
func (s *LedgerState) Clone() *LedgerState {
	if s == nil {
		return nil
	}
	out := &LedgerState{
		Bets:            make([]*Wager, len(s.Bets)),
		CurrentBankroll: s.CurrentBankroll,
		InitialBankroll: s.InitialBankroll,
	}
	for i, w := range s.Bets {
		cp := *w
		if w.Adjustments != nil {
			cp.Adjustments = append([]string(nil), w.Adjustments...)
		}
		if w.SettledAt != nil {
			t := *w.SettledAt
			cp.SettledAt = &t
		}
		out.Bets[i] = &cp
	}
	return out
}
