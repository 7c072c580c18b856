package intensity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		pga      float64
		pgv      float64
		expected Code
	}{
		{"zero motion", 0, 0, Code0},
		{"just below first threshold", 0.79, 0, Code0},
		{"boundary 0.8 resolves upward", 0.8, 0, Code1},
		{"boundary 2.5 resolves upward", 2.5, 0, Code2},
		{"mid band two", 5, 0, Code2},
		{"boundary 8 resolves upward", 8, 0, Code3},
		{"boundary 25 resolves upward", 25, 0, Code4},
		{"strong pga weak pgv stays 4", 80, 0, Code4},
		{"strong pga pgv just below 15", 500, 14.99, Code4},
		{"boundary pgv 15", 80, 15, Code5Lower},
		{"boundary pgv 30", 80, 30, Code5Upper},
		{"boundary pgv 50", 80, 50, Code6Lower},
		{"boundary pgv 80", 80, 80, Code6Upper},
		{"boundary pgv 140", 80, 140, Code7},
		{"extreme motion", 2000, 400, Code7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.pga, tt.pgv))
		})
	}
}

// TestClassifyTotal sweeps a dense grid and asserts the defensive "?" branch
// never fires for physically possible inputs.
func TestClassifyTotal(t *testing.T) {
	for pga := 0.0; pga <= 1000; pga += 0.7 {
		for pgv := 0.0; pgv <= 300; pgv += 1.3 {
			code := Classify(pga, pgv)
			assert.NotEqual(t, CodeUnknown, code, "pga=%g pgv=%g", pga, pgv)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	assert.Equal(t, Classify(81, 45), Classify(81, 45))
}

func TestMapObserved(t *testing.T) {
	tests := []struct {
		label string
		code  Code
		tier  Tier
	}{
		{"7級", Code7, TierHigh},
		{"6強", Code6Upper, TierHigh},
		{"6弱", Code6Lower, TierHigh},
		{"5強", Code5Upper, TierHigh},
		{"5弱", Code5Lower, TierHigh},
		{"4級", Code4, TierMedium},
		{"3級", Code3, TierMedium},
		{"2級", Code2, TierLow},
		{"1級", Code1, TierLow},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			code, tier := MapObserved(tt.label)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.tier, tier)
		})
	}

	t.Run("unknown label passes through", func(t *testing.T) {
		code, tier := MapObserved("震度不明")
		assert.Equal(t, Code("震度不明"), code)
		assert.Equal(t, TierUnclassified, tier)
	})

	t.Run("empty label", func(t *testing.T) {
		code, tier := MapObserved("")
		assert.Equal(t, Code(""), code)
		assert.Equal(t, TierUnclassified, tier)
	})
}
