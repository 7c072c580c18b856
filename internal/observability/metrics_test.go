package observability

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.StationsEvaluated.Inc()
	m.StationsEvaluated.Inc()
	m.RecordsDropped.WithLabelValues(DropMissingField).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StationsEvaluated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDropped.WithLabelValues(DropMissingField)))

	// Two unregistered instances in one process must not panic.
	other := NewMetricsForTesting()
	other.ModelErrors.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(other.ModelErrors))
}

func TestDumpText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsForTesting()
	reg.MustRegister(m.StationsParsed, m.RecordsDropped, m.ModelErrors)
	m.StationsParsed.Add(3)
	m.RecordsDropped.WithLabelValues(DropBadNumber).Inc()

	orig := prometheus.DefaultGatherer
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() { prometheus.DefaultGatherer = orig })

	var buf bytes.Buffer
	require.NoError(t, DumpText(&buf))

	out := buf.String()
	assert.Contains(t, out, "quake_report_stations_parsed_total 3")
	assert.Contains(t, out, `quake_report_records_dropped_total{reason="bad_number"} 1`)
	assert.Contains(t, out, "# HELP quake_report_model_errors_total")
}
