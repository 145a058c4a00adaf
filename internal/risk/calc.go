// Package risk provides pure position-sizing and risk-reward calculations.
//
// All functions are deterministic and never fail: inputs that cannot be
// computed (non-finite prices, entry equal to stop) yield the sentinel 0
// rather than an error, NaN or Inf, because the caller is typically a form
// that re-derives these values on every keystroke.
package risk

import (
	"math"
	"strconv"
)

// DefaultAccountBalance is the stand-in baseline used when no account
// balance is configured.
const DefaultAccountBalance = 10000

// PositionSize returns the position size for risking riskPercent of
// accountBalance between entry and stopLoss, rounded to 4 decimal places.
// Returns 0 when entry and stop are equal or any input is not finite.
func PositionSize(entry, stopLoss, riskPercent, accountBalance float64) float64 {
	if !finite(entry) || !finite(stopLoss) || !finite(riskPercent) || !finite(accountBalance) {
		return 0
	}
	stopDistance := math.Abs(entry - stopLoss)
	if stopDistance == 0 {
		return 0
	}
	riskAmount := accountBalance * (riskPercent / 100)
	return round(riskAmount/stopDistance, 4)
}

// RiskReward returns the reward:risk ratio |tp-entry| / |entry-sl|,
// rounded to 2 decimal places. Returns 0 when entry and stop are equal or
// any input is not finite.
func RiskReward(entry, stopLoss, takeProfit float64) float64 {
	if !finite(entry) || !finite(stopLoss) || !finite(takeProfit) {
		return 0
	}
	stopDistance := math.Abs(entry - stopLoss)
	if stopDistance == 0 {
		return 0
	}
	return round(math.Abs(takeProfit-entry)/stopDistance, 2)
}

// PositionSizeStr is PositionSize over the raw numeric strings held by a
// draft. Unparseable input yields the 0 sentinel.
func PositionSizeStr(entry, stopLoss, riskPercent string, accountBalance float64) float64 {
	e, ok1 := parse(entry)
	s, ok2 := parse(stopLoss)
	r, ok3 := parse(riskPercent)
	if !ok1 || !ok2 || !ok3 {
		return 0
	}
	return PositionSize(e, s, r, accountBalance)
}

// RiskRewardStr is RiskReward over the raw numeric strings held by a draft.
func RiskRewardStr(entry, stopLoss, takeProfit string) float64 {
	e, ok1 := parse(entry)
	s, ok2 := parse(stopLoss)
	t, ok3 := parse(takeProfit)
	if !ok1 || !ok2 || !ok3 {
		return 0
	}
	return RiskReward(e, s, t)
}

func parse(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round(v float64, places int) float64 {
	multiplier := math.Pow(10, float64(places))
	return math.Round(v*multiplier) / multiplier
}
