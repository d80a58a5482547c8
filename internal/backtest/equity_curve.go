package backtest

import (
	"bytes"
	"strconv"
)

// EquityPoint is the bankroll after one simulated bet
type EquityPoint struct {
	BetNumber int     `json:"bet_number"`
	Value     float64 `json:"value"`
	Drawdown  float64 `json:"drawdown"`
}

// EquityCurve is the bankroll progression of a simulation
type EquityCurve []EquityPoint

// Final returns the last bankroll value, or zero for an empty curve
func (e EquityCurve) Final() float64 {
	if len(e) == 0 {
		return 0
	}
	return e[len(e)-1].Value
}

// ToCSV exports equity curve to CSV string
func (e EquityCurve) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("bet_number,bankroll,drawdown\n")
	for _, point := range e {
		buf.WriteString(strconv.Itoa(point.BetNumber))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Value))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Drawdown))
		buf.WriteString("\n")
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
