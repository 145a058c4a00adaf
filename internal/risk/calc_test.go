package risk

import (
	"math"
	"testing"
)

func TestPositionSize(t *testing.T) {
	tests := []struct {
		name        string
		entry       float64
		stopLoss    float64
		riskPercent float64
		balance     float64
		want        float64
	}{
		{"long setup", 100, 90, 2, 10000, 20.0},
		{"short setup", 90, 100, 2, 10000, 20.0},
		{"one percent default", 50000, 49000, 1, 10000, 0.1},
		{"tight stop", 1.1000, 1.0950, 1, 10000, 20000},
		{"entry equals stop", 100, 100, 1, 10000, 0},
		{"zero balance", 100, 90, 1, 0, 0},
		{"nan entry", math.NaN(), 90, 1, 10000, 0},
		{"inf stop", 100, math.Inf(1), 1, 10000, 0},
		{"rounds to 4 places", 3, 0, 1, 10000, 33.3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionSize(tt.entry, tt.stopLoss, tt.riskPercent, tt.balance)
			if got != tt.want {
				t.Errorf("PositionSize(%v, %v, %v, %v) = %v, want %v",
					tt.entry, tt.stopLoss, tt.riskPercent, tt.balance, got, tt.want)
			}
		})
	}
}

func TestRiskReward(t *testing.T) {
	tests := []struct {
		name       string
		entry      float64
		stopLoss   float64
		takeProfit float64
		want       float64
	}{
		{"three to one", 100, 90, 130, 3.00},
		{"short three to one", 100, 110, 70, 3.00},
		{"half", 100, 90, 105, 0.50},
		{"entry equals stop", 100, 100, 130, 0},
		{"target at entry", 100, 90, 100, 0},
		{"nan target", 100, 90, math.NaN(), 0},
		{"rounds to 2 places", 100, 97, 110, 3.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RiskReward(tt.entry, tt.stopLoss, tt.takeProfit)
			if got != tt.want {
				t.Errorf("RiskReward(%v, %v, %v) = %v, want %v",
					tt.entry, tt.stopLoss, tt.takeProfit, got, tt.want)
			}
		})
	}
}

func TestStringVariants(t *testing.T) {
	if got := PositionSizeStr("100", "90", "2", 10000); got != 20 {
		t.Errorf("PositionSizeStr = %v, want 20", got)
	}
	if got := PositionSizeStr("", "90", "2", 10000); got != 0 {
		t.Errorf("PositionSizeStr with empty entry = %v, want 0", got)
	}
	if got := PositionSizeStr("abc", "90", "2", 10000); got != 0 {
		t.Errorf("PositionSizeStr with junk entry = %v, want 0", got)
	}
	if got := RiskRewardStr("100", "90", "130"); got != 3 {
		t.Errorf("RiskRewardStr = %v, want 3", got)
	}
	if got := RiskRewardStr("100", "90", ""); got != 0 {
		t.Errorf("RiskRewardStr with empty target = %v, want 0", got)
	}
}

// Spec round-trip example: the exact derived values a saved plan must carry.
func TestDerivedValuesExample(t *testing.T) {
	size := PositionSize(100, 90, 2, 10000)
	if size != 20.0000 {
		t.Errorf("PositionSize = %v, want 20.0000", size)
	}
	rr := RiskReward(100, 90, 130)
	if rr != 3.00 {
		t.Errorf("RiskReward = %v, want 3.00", rr)
	}
}
