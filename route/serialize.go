package route

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tkrajina/gpxgo/gpx"
)

// MaxPayloadChars is the size budget of one export payload.
const MaxPayloadChars = 1500

// ErrExportTooLarge means even the compact form does not fit the budget;
// the caller has to choose a coarser level and retry.
var ErrExportTooLarge = errors.New("too many waypoints")

// Format is an export encoding.
type Format string

const (
	FormatGPX        Format = "gpx"
	FormatCSV        Format = "csv"
	FormatCompactCSV Format = "csv-compact"
)

var csvHeader = []string{"name", "latitude", "longitude", "altitude"}

// ParseFormat accepts gpx or csv; an empty string means gpx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatGPX:
		return FormatGPX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q (expected gpx|csv)", s)
}

// ExportOptions selects the primary encoding and the GPX metadata.
type ExportOptions struct {
	Format      Format
	Level       Level
	GeneratedAt time.Time
}

// Payload is the text handed to the QR encoder.
type Payload struct {
	Format   Format `json:"format"`
	Text     string `json:"text"`
	Chars    int    `json:"chars"`
	Fallback bool   `json:"fallback"`
}

// Export renders the primary format and falls back to compact CSV when it
// exceeds MaxPayloadChars. Output is never truncated: if the compact form is
// still too large, ErrExportTooLarge is returned.
func Export(wps []Waypoint, opts ExportOptions) (Payload, error) {
	var (
		text string
		err  error
	)
	format := opts.Format
	if format == "" {
		format = FormatGPX
	}
	switch format {
	case FormatGPX:
		text, err = MarshalGPX(wps, opts.Level, opts.GeneratedAt)
	case FormatCSV:
		text, err = MarshalCSV(wps)
	default:
		return Payload{}, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return Payload{}, err
	}
	if n := utf8.RuneCountInString(text); n <= MaxPayloadChars {
		return Payload{Format: format, Text: text, Chars: n}, nil
	}

	text, err = MarshalCompactCSV(wps)
	if err != nil {
		return Payload{}, err
	}
	n := utf8.RuneCountInString(text)
	if n > MaxPayloadChars {
		return Payload{}, fmt.Errorf("%w: compact export is %d characters (limit %d)", ErrExportTooLarge, n, MaxPayloadChars)
	}
	return Payload{Format: FormatCompactCSV, Text: text, Chars: n, Fallback: true}, nil
}

// MarshalCSV renders a header row plus one row per waypoint at 6 decimals.
func MarshalCSV(wps []Waypoint) (string, error) {
	return marshalCSV(wps, 6, true)
}

// MarshalCompactCSV is the headerless 5-decimal fallback encoding.
func MarshalCompactCSV(wps []Waypoint) (string, error) {
	return marshalCSV(wps, 5, false)
}

func marshalCSV(wps []Waypoint, precision int, header bool) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header {
		if err := w.Write(csvHeader); err != nil {
			return "", err
		}
	}
	for _, wp := range wps {
		row := []string{
			wp.Name,
			strconv.FormatFloat(wp.Lat, 'f', precision, 64),
			strconv.FormatFloat(wp.Lng, 'f', precision, 64),
			strconv.Itoa(wp.Altitude),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MarshalGPX renders a GPX 1.1 document holding the waypoints both as <wpt>
// elements and as a single track segment.
func MarshalGPX(wps []Waypoint, level Level, generatedAt time.Time) (string, error) {
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	generatedAt = generatedAt.UTC().Truncate(time.Second)

	doc := &gpx.GPX{
		Version:     "1.1",
		Creator:     "igc-route",
		Name:        "Flight route",
		Description: fmt.Sprintf("Detail level: %s", level),
		Keywords:    string(level),
		Time:        &generatedAt,
	}
	points := make([]gpx.GPXPoint, 0, len(wps))
	for _, wp := range wps {
		points = append(points, gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  round6(wp.Lat),
				Longitude: round6(wp.Lng),
				Elevation: *gpx.NewNullableFloat64(float64(wp.Altitude)),
			},
			Name: wp.Name,
		})
	}
	doc.Waypoints = points
	doc.Tracks = []gpx.GPXTrack{{
		Name:     "Flight route",
		Segments: []gpx.GPXTrackSegment{{Points: points}},
	}}

	out, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return "", fmt.Errorf("render gpx: %w", err)
	}
	return string(out), nil
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
