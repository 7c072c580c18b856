package station

import (
	"bytes"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"
)

// recordDelimiter introduces each station record in the source text.
const recordDelimiter = "Stacode="

// Required record keys. PGA is in gal, PGV in kine.
const (
	keyCode      = "Stacode"
	keyLon       = "Stalon"
	keyLat       = "Stalat"
	keyIntensity = "Int"
	keyPGA       = "PGA(SUM)"
	keyPGV       = "PGV(SUM)"
)

var requiredKeys = []string{keyCode, keyLon, keyLat, keyIntensity, keyPGA, keyPGV}

var (
	// Epicenter tokens embedded in the header, e.g. "Lon:120.57 Lat:23.23".
	epiLonRe = regexp.MustCompile(`Lon:([\d.]+)`)
	epiLatRe = regexp.MustCompile(`Lat:([\d.]+)`)
)

// ErrUndecodable means the file decoded under neither the legacy Big5/CP950
// encoding nor UTF-8. Fatal to the run: nothing downstream proceeds without
// station data.
var ErrUndecodable = errors.New("station: text is neither Big5 nor valid UTF-8")

// Parser reads raw station files. Records with missing required fields or
// non-numeric values are dropped with a diagnostic; parsing always continues.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser that logs drop diagnostics to the given logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse decodes and parses a raw station file. Station order follows the
// source text; duplicate station codes are preserved as separate records.
func (p *Parser) Parse(raw []byte) (Header, []Record, Stats, error) {
	text, usedFallback, err := decodeText(raw)
	if err != nil {
		return Header{}, nil, Stats{}, err
	}

	stats := Stats{UsedFallback: usedFallback}
	if usedFallback {
		p.logger.Warn("primary Big5 decode failed, file read as UTF-8")
	}

	parts := strings.Split(text, recordDelimiter)
	header := parseHeader(parts[0])

	records := make([]Record, 0, len(parts)-1)
	for _, part := range parts[1:] {
		rec, ok := p.parseSegment(recordDelimiter+part, &stats)
		if ok {
			records = append(records, rec)
		}
	}
	stats.Accepted = len(records)

	return header, records, stats, nil
}

// parseHeader trims the preamble and extracts the actual epicenter when both
// labelled tokens are present. A header without them is valid and simply has
// no known epicenter.
func parseHeader(text string) Header {
	h := Header{Text: strings.TrimSpace(text)}

	lonMatch := epiLonRe.FindStringSubmatch(h.Text)
	latMatch := epiLatRe.FindStringSubmatch(h.Text)
	if lonMatch == nil || latMatch == nil {
		return h
	}

	lon, errLon := strconv.ParseFloat(lonMatch[1], 64)
	lat, errLat := strconv.ParseFloat(latMatch[1], 64)
	if errLon != nil || errLat != nil {
		return h
	}

	h.Epicenter = &Geo{Lon: lon, Lat: lat}
	return h
}

// parseSegment parses one record segment into a Record. Returns false when
// the record must be dropped; stats and the log record why.
func (p *Parser) parseSegment(seg string, stats *Stats) (Record, bool) {
	fields := make(map[string]string)
	for _, field := range strings.Split(seg, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(field), "=")
		if !found {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			stats.DroppedMissing++
			p.logger.Warn("station record dropped, missing field",
				"station", fields[keyCode], "field", key)
			return Record{}, false
		}
	}

	nums := make(map[string]float64, 4)
	for _, key := range []string{keyLon, keyLat, keyPGA, keyPGV} {
		v, err := strconv.ParseFloat(fields[key], 64)
		if err != nil {
			stats.DroppedBadNumber++
			p.logger.Warn("station record dropped, non-numeric field",
				"station", fields[keyCode], "field", key, "value", fields[key])
			return Record{}, false
		}
		nums[key] = v
	}

	return Record{
		Code:              fields[keyCode],
		Geo:               Geo{Lon: nums[keyLon], Lat: nums[keyLat]},
		ObservedIntensity: fields[keyIntensity],
		ObservedPGA:       nums[keyPGA],
		ObservedPGV:       nums[keyPGV],
		Extra:             extraFields(fields),
	}, true
}

// extraFields returns the unrecognized keys of a record. Nil when there are
// none, so accepted records without extras stay comparable in tests.
func extraFields(fields map[string]string) map[string]string {
	var extra map[string]string
	for k, v := range fields {
		switch k {
		case keyCode, keyLon, keyLat, keyIntensity, keyPGA, keyPGV:
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[k] = v
	}
	return extra
}

// decodeText decodes the raw file bytes, attempting Big5 first (the x/text
// tables cover the CP950 superset) and falling back to UTF-8. The bool
// reports whether the fallback was used.
func decodeText(raw []byte) (string, bool, error) {
	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
	if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), false, nil
	}
	if utf8.Valid(raw) {
		return string(raw), true, nil
	}
	return "", false, ErrUndecodable
}
