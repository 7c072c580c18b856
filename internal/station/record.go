// Package station parses the legacy CWB-style station observation files:
// a free-text header followed by comma-separated key=value records, one per
// station, each introduced by a "Stacode=" field.
package station

// Geo is a WGS-84 longitude/latitude pair in decimal degrees.
type Geo struct {
	Lon float64
	Lat float64
}

// Header is the free text preceding the first station record, plus the
// actual epicenter when the header embeds labelled Lon:/Lat: tokens.
type Header struct {
	Text      string
	Epicenter *Geo
}

// Record is one accepted station observation. The parser guarantees the
// required fields are present and numeric; anything else it saw for the
// station lands in Extra.
type Record struct {
	Code              string
	Geo               Geo
	ObservedIntensity string  // raw network label, e.g. "6強"
	ObservedPGA       float64 // gal
	ObservedPGV       float64 // kine
	Extra             map[string]string
}

// Stats summarizes one parse pass for logging and metrics.
type Stats struct {
	Accepted         int
	DroppedMissing   int
	DroppedBadNumber int
	UsedFallback     bool // secondary encoding was needed to decode the file
}
