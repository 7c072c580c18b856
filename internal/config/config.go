package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all run settings, populated from environment variables.
// File paths can additionally be overridden by driver flags.
type Config struct {
	StationFile  string
	BoundaryFile string
	OutputFile   string
	LogLevel     string
	LogFormat    string

	// Hypothesized event the model predicts against.
	EpicenterLon float64
	EpicenterLat float64
	DepthKm      float64
	Magnitude    float64

	FigureDPI int
}

// Load reads configuration from environment variables, applying defaults
// where unset. The default hypothesis matches event no. 114007.
func Load() (*Config, error) {
	epiLon, err := parseFloat("EPICENTER_LON", 120.53)
	if err != nil {
		return nil, err
	}
	epiLat, err := parseFloat("EPICENTER_LAT", 23.28)
	if err != nil {
		return nil, err
	}
	depth, err := parseFloat("DEPTH_KM", 10.0)
	if err != nil {
		return nil, err
	}
	mag, err := parseFloat("MAGNITUDE", 6.4)
	if err != nil {
		return nil, err
	}
	dpi, err := parseInt("FIGURE_DPI", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StationFile:  envOrDefault("STATION_FILE", "2025007.txt"),
		BoundaryFile: envOrDefault("BOUNDARY_FILE", "COUNTY_MOI_1090820.json"),
		OutputFile:   envOrDefault("OUTPUT_FILE", "Composite_All.png"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "json"),
		EpicenterLon: epiLon,
		EpicenterLat: epiLat,
		DepthKm:      depth,
		Magnitude:    mag,
		FigureDPI:    dpi,
	}

	if cfg.DepthKm <= 0 {
		return nil, errors.New("DEPTH_KM must be positive")
	}
	if cfg.FigureDPI <= 0 {
		return nil, errors.New("FIGURE_DPI must be positive")
	}

	return cfg, nil
}

// envOrDefault returns the environment value for key, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
