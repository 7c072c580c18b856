package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Drop reasons for the RecordsDropped counter.
const (
	DropMissingField = "missing_field"
	DropBadNumber    = "bad_number"
)

// Metrics holds the Prometheus counters and histograms for a report run.
// The run is one-shot and network surfaces are out of scope, so metrics are
// dumped in text exposition format at exit instead of served over HTTP.
type Metrics struct {
	StationsParsed    prometheus.Counter
	RecordsDropped    *prometheus.CounterVec // labels: reason={missing_field,bad_number}
	EncodingFallbacks prometheus.Counter
	StationsEvaluated prometheus.Counter
	ModelErrors       prometheus.Counter
	RenderDuration    prometheus.Histogram
}

// NewMetrics creates and registers all run metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationsParsed,
		m.RecordsDropped,
		m.EncodingFallbacks,
		m.StationsEvaluated,
		m.ModelErrors,
		m.RenderDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_report",
			Name:      "stations_parsed_total",
			Help:      "Station records accepted by the parser.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_report",
			Name:      "records_dropped_total",
			Help:      "Station records dropped during parsing, by reason.",
		}, []string{"reason"}),
		EncodingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_report",
			Name:      "encoding_fallbacks_total",
			Help:      "Input files that needed the secondary text encoding.",
		}),
		StationsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_report",
			Name:      "stations_evaluated_total",
			Help:      "Stations with attached model predictions.",
		}),
		ModelErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_report",
			Name:      "model_errors_total",
			Help:      "Stations skipped because the attenuation model hit a domain error.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_report",
			Name:      "render_duration_seconds",
			Help:      "Time spent composing and encoding the output figure.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// DumpText writes all metrics from the default registry to w in Prometheus
// text exposition format.
func DumpText(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
