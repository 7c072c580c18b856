// Package attenuation implements the empirical ground-motion prediction
// formulas used by the report pipeline: great-circle distance, peak ground
// acceleration (gal), and peak ground velocity (kine) as functions of a
// hypothesized event and a station location.
//
// All functions are pure; callers may evaluate stations in any order or in
// parallel without coordination.
package attenuation

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// minEffectiveDistKm floors the effective PGV distance to avoid the
// singularity of the attenuation curve at very short range.
const minEffectiveDistKm = 3.0

// Hypothesis is the fixed event configuration a run predicts against:
// epicenter location, hypocentral depth, and magnitude.
type Hypothesis struct {
	Lon       float64 // decimal degrees
	Lat       float64 // decimal degrees
	DepthKm   float64
	Magnitude float64
}

// DomainError reports a non-physical model input, e.g. a magnitude that
// drives the PGV logarithm out of its domain. It signals a configuration
// problem with the hypothesis, not bad station data.
type DomainError struct {
	Op    string
	Value float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("attenuation: %s undefined for value %g", e.Op, e.Value)
}

// HaversineKm returns the great-circle distance in kilometres between two
// points given in decimal degrees. Symmetric, zero for identical points.
func HaversineKm(lon1, lat1, lon2, lat2 float64) float64 {
	rlon1 := lon1 * math.Pi / 180
	rlat1 := lat1 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180

	dlon := rlon2 - rlon1
	dlat := rlat2 - rlat1

	sinLat := math.Sin(dlat / 2)
	sinLon := math.Sin(dlon / 2)
	a := sinLat*sinLat + math.Cos(rlat1)*math.Cos(rlat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// PredictedPGA returns the predicted peak ground acceleration in gal at the
// given station location. The slant distance from the hypocenter must be
// positive; a zero slant distance (surface event at the station itself)
// returns a DomainError.
func PredictedPGA(staLon, staLat float64, hyp Hypothesis) (float64, error) {
	horizontal := HaversineKm(hyp.Lon, hyp.Lat, staLon, staLat)
	slant := math.Sqrt(horizontal*horizontal + hyp.DepthKm*hyp.DepthKm)
	if slant <= 0 {
		return 0, &DomainError{Op: "pga slant distance", Value: slant}
	}
	return 1.657 * math.Exp(1.533*hyp.Magnitude) * math.Pow(slant, -1.607), nil
}

// PredictedPGV returns the predicted peak ground velocity in kine at the
// given station location, on rock amplified to surface conditions by a
// factor of 1.31. The effective distance is floored at 3 km.
func PredictedPGV(staLon, staLat float64, hyp Hypothesis) (float64, error) {
	horizontal := HaversineKm(hyp.Lon, hyp.Lat, staLon, staLat)

	longTerm := math.Pow(10, 0.5*hyp.Magnitude-1.85) / 2
	hypoDist := math.Sqrt(hyp.DepthKm*hyp.DepthKm+horizontal*horizontal) - longTerm
	x := math.Max(hypoDist, minEffectiveDistKm)

	term := x + 0.0028*math.Pow(10, 0.5*hyp.Magnitude)
	if !(term > 0) {
		return 0, &DomainError{Op: "pgv log10 argument", Value: term}
	}

	gpv600 := math.Pow(10, 0.58*hyp.Magnitude+0.0038*hyp.DepthKm-1.29-math.Log10(term)-0.002*x)
	return gpv600 * 1.31, nil
}
