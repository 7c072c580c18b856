// Package intensity maps peak ground motion and observed network labels onto
// the categorical CWB-style intensity scale.
package intensity

import "math"

// Code is a categorical intensity on the ordered scale
// "0" < "1" < "2" < "3" < "4" < "5-" < "5+" < "6-" < "6+" < "7".
type Code string

const (
	Code0      Code = "0"
	Code1      Code = "1"
	Code2      Code = "2"
	Code3      Code = "3"
	Code4      Code = "4"
	Code5Lower Code = "5-"
	Code5Upper Code = "5+"
	Code6Lower Code = "6-"
	Code6Upper Code = "6+"
	Code7      Code = "7"

	// CodeUnknown is the defensive fallback for a value no band covers.
	// The shipped band tables are gapless over [0, +Inf), so it is
	// unreachable unless the tables are edited; callers treat it as a bug.
	CodeUnknown Code = "?"
)

// Tier is the display severity of an observed label. Presentation-only.
type Tier string

const (
	TierLow          Tier = "low"
	TierMedium       Tier = "medium"
	TierHigh         Tier = "high"
	TierUnclassified Tier = "unclassified"
)

// band is one half-open classification interval [previous upper, Upper).
type band struct {
	Upper float64 // exclusive
	Code  Code
}

// pgaBands covers weak motion. Values at or above the last upper bound
// (80 gal) fall through to the PGV sub-classification.
var pgaBands = []band{
	{Upper: 0.8, Code: Code0},
	{Upper: 2.5, Code: Code1},
	{Upper: 8, Code: Code2},
	{Upper: 25, Code: Code3},
	{Upper: 80, Code: Code4},
}

// pgvBands sub-classifies strong motion (pga >= 80 gal) by velocity.
var pgvBands = []band{
	{Upper: 15, Code: Code4},
	{Upper: 30, Code: Code5Lower},
	{Upper: 50, Code: Code5Upper},
	{Upper: 80, Code: Code6Lower},
	{Upper: 140, Code: Code6Upper},
	{Upper: math.Inf(1), Code: Code7},
}

// observedClass pairs a scale code with its display tier.
type observedClass struct {
	Code Code
	Tier Tier
}

// observedLabels translates the textual intensity labels reported by the
// observation network. Immutable after init.
var observedLabels = map[string]observedClass{
	"7級": {Code7, TierHigh},
	"6強": {Code6Upper, TierHigh},
	"6弱": {Code6Lower, TierHigh},
	"5強": {Code5Upper, TierHigh},
	"5弱": {Code5Lower, TierHigh},
	"4級": {Code4, TierMedium},
	"3級": {Code3, TierMedium},
	"2級": {Code2, TierLow},
	"1級": {Code1, TierLow},
}

// scan returns the code of the first band whose upper bound exceeds v.
func scan(v float64, bands []band) (Code, bool) {
	for _, b := range bands {
		if v < b.Upper {
			return b.Code, true
		}
	}
	return CodeUnknown, false
}

// Classify maps a predicted (pga, pgv) pair to an intensity code. PGA in gal
// drives the cascade up to "4"; at 80 gal and above the PGV in kine decides
// the sub-class. Total over non-negative inputs.
func Classify(pga, pgv float64) Code {
	if code, ok := scan(pga, pgaBands); ok {
		return code
	}
	code, ok := scan(pgv, pgvBands)
	if !ok {
		return CodeUnknown
	}
	return code
}

// MapObserved translates an observed network label into a scale code and
// display tier. Unknown labels pass through as-is with TierUnclassified.
func MapObserved(label string) (Code, Tier) {
	if c, ok := observedLabels[label]; ok {
		return c.Code, c.Tier
	}
	return Code(label), TierUnclassified
}
