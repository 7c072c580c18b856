// Command intensityreport reads a legacy-encoded station observation file,
// predicts ground motion at every station for the configured hypothesized
// event, and writes the composite observed-vs-predicted intensity figure.
//
// Configuration comes from environment variables (see internal/config);
// file paths can be overridden with flags:
//
//	intensityreport -input 2025007.txt -boundary COUNTY_MOI_1090820.json -output Composite_All.png
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tremolab/quake-intensity/internal/attenuation"
	"github.com/tremolab/quake-intensity/internal/config"
	"github.com/tremolab/quake-intensity/internal/observability"
	"github.com/tremolab/quake-intensity/internal/render"
	"github.com/tremolab/quake-intensity/internal/report"
	"github.com/tremolab/quake-intensity/internal/station"
)

const figureTitle = "TREM-EEW Intensity Prediction Performance"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	input := flag.String("input", "", "station observation file (overrides STATION_FILE)")
	boundary := flag.String("boundary", "", "county boundary GeoJSON (overrides BOUNDARY_FILE)")
	output := flag.String("output", "", "output PNG path (overrides OUTPUT_FILE)")
	flag.Parse()

	if *input != "" {
		cfg.StationFile = *input
	}
	if *boundary != "" {
		cfg.BoundaryFile = *boundary
	}
	if *output != "" {
		cfg.OutputFile = *output
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	raw, err := os.ReadFile(cfg.StationFile)
	if err != nil {
		return err
	}

	header, records, stats, err := station.NewParser(logger).Parse(raw)
	if err != nil {
		return err
	}
	metrics.StationsParsed.Add(float64(stats.Accepted))
	metrics.RecordsDropped.WithLabelValues(observability.DropMissingField).Add(float64(stats.DroppedMissing))
	metrics.RecordsDropped.WithLabelValues(observability.DropBadNumber).Add(float64(stats.DroppedBadNumber))
	if stats.UsedFallback {
		metrics.EncodingFallbacks.Inc()
	}
	logger.Info("stations parsed",
		"file", cfg.StationFile,
		"accepted", stats.Accepted,
		"dropped_missing", stats.DroppedMissing,
		"dropped_bad_number", stats.DroppedBadNumber,
		"known_epicenter", header.Epicenter != nil,
	)

	hyp := attenuation.Hypothesis{
		Lon:       cfg.EpicenterLon,
		Lat:       cfg.EpicenterLat,
		DepthKm:   cfg.DepthKm,
		Magnitude: cfg.Magnitude,
	}
	rep, err := report.NewEvaluator(logger, metrics).Evaluate(hyp, header, records)
	if err != nil {
		return err
	}

	boundary, err := render.LoadBoundary(cfg.BoundaryFile)
	if err != nil {
		return err
	}

	start := time.Now()
	err = render.SaveComposite(cfg.OutputFile, rep, boundary, render.Options{
		Title: figureTitle,
		DPI:   cfg.FigureDPI,
	})
	if err != nil {
		return err
	}
	metrics.RenderDuration.Observe(time.Since(start).Seconds())

	logger.Info("report complete",
		"output", cfg.OutputFile,
		"stations", len(rep.Predictions),
		"generated_at", rep.GeneratedAt,
	)

	if err := observability.DumpText(os.Stderr); err != nil {
		logger.Warn("metrics dump failed", "error", err)
	}
	return nil
}
