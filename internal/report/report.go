// Package report evaluates parsed station records against a hypothesized
// event, attaching predicted ground motion, categorical intensity, and
// prediction errors for the presentation layer to consume.
package report

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tremolab/quake-intensity/internal/attenuation"
	"github.com/tremolab/quake-intensity/internal/intensity"
	"github.com/tremolab/quake-intensity/internal/observability"
	"github.com/tremolab/quake-intensity/internal/station"
)

// Prediction is one station with its model outputs attached. Built once per
// run and not mutated afterwards.
type Prediction struct {
	Station station.Record

	PGA  float64 // gal
	PGV  float64 // kine
	Code intensity.Code

	// Percent errors, (observed - predicted) / predicted * 100.
	PGAErrorPct float64
	PGVErrorPct float64
}

// Report is the complete output of one evaluation pass.
type Report struct {
	Header          string
	ActualEpicenter *station.Geo
	Hypothesis      attenuation.Hypothesis
	Predictions     []Prediction
	GeneratedAt     time.Time
}

// Evaluator runs the per-station prediction pass.
type Evaluator struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEvaluator creates an Evaluator with the given observability.
func NewEvaluator(logger *slog.Logger, metrics *observability.Metrics) *Evaluator {
	return &Evaluator{logger: logger, metrics: metrics}
}

// Evaluate attaches predictions to every station. Stations whose model
// evaluation hits an attenuation domain error are skipped with a diagnostic;
// a domain error points at the hypothesis, not the data, so it is logged at
// error level and counted separately from parse drops. Any other model
// failure aborts the run.
func (e *Evaluator) Evaluate(hyp attenuation.Hypothesis, header station.Header, records []station.Record) (Report, error) {
	rep := Report{
		Header:          header.Text,
		ActualEpicenter: header.Epicenter,
		Hypothesis:      hyp,
		Predictions:     make([]Prediction, 0, len(records)),
		GeneratedAt:     clock.Now(),
	}

	for _, rec := range records {
		pred, err := e.evaluateStation(hyp, rec)
		if err != nil {
			var derr *attenuation.DomainError
			if errors.As(err, &derr) {
				e.logger.Error("model domain error, station skipped",
					"station", rec.Code, "error", err)
				e.metrics.ModelErrors.Inc()
				continue
			}
			return Report{}, err
		}
		rep.Predictions = append(rep.Predictions, pred)
		e.metrics.StationsEvaluated.Inc()
	}

	return rep, nil
}

func (e *Evaluator) evaluateStation(hyp attenuation.Hypothesis, rec station.Record) (Prediction, error) {
	pga, err := attenuation.PredictedPGA(rec.Geo.Lon, rec.Geo.Lat, hyp)
	if err != nil {
		return Prediction{}, err
	}
	pgv, err := attenuation.PredictedPGV(rec.Geo.Lon, rec.Geo.Lat, hyp)
	if err != nil {
		return Prediction{}, err
	}

	return Prediction{
		Station:     rec,
		PGA:         pga,
		PGV:         pgv,
		Code:        intensity.Classify(pga, pgv),
		PGAErrorPct: percentError(rec.ObservedPGA, pga),
		PGVErrorPct: percentError(rec.ObservedPGV, pgv),
	}, nil
}

// percentError is the observed-vs-predicted deviation in percent. Predicted
// values are strictly positive for any physical hypothesis, so the division
// is safe by the time this is reached.
func percentError(observed, predicted float64) float64 {
	return (observed - predicted) / predicted * 100
}
