package risk

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: For any finite entry != stop and positive risk percent, the
// position size is strictly positive and equals
// balance * risk / 100 / |entry - stop| rounded to 4 decimals.
func TestProperty_PositionSizeFormula(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	priceGen := gen.Float64Range(0.0001, 100000.0)
	riskGen := gen.Float64Range(0.1, 10.0)
	balanceGen := gen.Float64Range(100.0, 1000000.0)

	properties.Property("position size matches formula and is positive", prop.ForAll(
		func(entry, stop, riskPct, balance float64) bool {
			if entry == stop {
				return PositionSize(entry, stop, riskPct, balance) == 0
			}

			got := PositionSize(entry, stop, riskPct, balance)
			want := round(balance*(riskPct/100)/math.Abs(entry-stop), 4)

			return got == want && got >= 0
		},
		priceGen, priceGen, riskGen, balanceGen,
	))

	properties.Property("entry == stop always yields the zero sentinel", prop.ForAll(
		func(price, riskPct, balance float64) bool {
			size := PositionSize(price, price, riskPct, balance)
			rr := RiskReward(price, price, price*2)
			return size == 0 && rr == 0
		},
		priceGen, riskGen, balanceGen,
	))

	properties.TestingRun(t)
}

// Property: The reward:risk ratio is invariant under scaling entry, stop
// and target by the same positive constant (a ratio of price distances).
func TestProperty_RiskRewardScaleInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("RR(k*e, k*sl, k*tp) == RR(e, sl, tp)", prop.ForAll(
		func(entry, stop, target, scale float64) bool {
			if entry == stop {
				return true
			}

			base := RiskReward(entry, stop, target)
			scaled := RiskReward(entry*scale, stop*scale, target*scale)

			// Rounding to 2 decimals can differ by one ulp of the last
			// place across scales.
			return math.Abs(base-scaled) <= 0.01
		},
		gen.Float64Range(1.0, 10000.0),
		gen.Float64Range(1.0, 10000.0),
		gen.Float64Range(1.0, 10000.0),
		gen.Float64Range(0.5, 100.0),
	))

	properties.Property("RR is never negative, NaN or Inf", prop.ForAll(
		func(entry, stop, target float64) bool {
			rr := RiskReward(entry, stop, target)
			return rr >= 0 && !math.IsNaN(rr) && !math.IsInf(rr, 0)
		},
		gen.Float64Range(-10000.0, 10000.0),
		gen.Float64Range(-10000.0, 10000.0),
		gen.Float64Range(-10000.0, 10000.0),
	))

	properties.TestingRun(t)
}
