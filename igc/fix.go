// Package igc decodes IGC-style flight recorder logs: fixed-column B records
// become Fix values and H/A records fill a best-effort FlightHeader.
package igc

import (
	"fmt"
	"strconv"
	"strings"
)

// MinFixLength is the shortest B record that carries every fixed column.
const MinFixLength = 35

// Fix is one timestamped GPS/barometric sample.
type Fix struct {
	Time             string  `json:"time"`              // HH:MM:SS
	TimestampSeconds int     `json:"timestamp_seconds"` // seconds since local midnight
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	Valid            bool    `json:"valid"` // 3-D lock ('A') vs void
	PressureAltitude int     `json:"pressure_altitude"`
	GNSSAltitude     int     `json:"gnss_altitude"`
}

// DecodeFix decodes one fixed-column B record. It reports false for lines
// that are too short or whose numeric columns do not parse; callers skip
// such lines and keep going.
func DecodeFix(line string) (Fix, bool) {
	if len(line) < MinFixLength {
		return Fix{}, false
	}

	var (
		hh, mm, ss       int
		latDeg, latMin   int
		latThou, lonDeg  int
		lonMin, lonThou  int
		pressAlt, gpsAlt int
	)
	fields := []struct {
		dst    *int
		offset int
		length int
	}{
		{&hh, 1, 2}, {&mm, 3, 2}, {&ss, 5, 2},
		{&latDeg, 7, 2}, {&latMin, 9, 2}, {&latThou, 11, 3},
		{&lonDeg, 15, 3}, {&lonMin, 18, 2}, {&lonThou, 20, 3},
		{&pressAlt, 25, 5}, {&gpsAlt, 30, 5},
	}
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(line[f.offset : f.offset+f.length]))
		if err != nil {
			return Fix{}, false
		}
		*f.dst = v
	}

	latSign := -1.0
	if line[14] == 'N' {
		latSign = 1
	}
	lonSign := -1.0
	if line[23] == 'E' {
		lonSign = 1
	}

	return Fix{
		Time:             fmt.Sprintf("%02d:%02d:%02d", hh, mm, ss),
		TimestampSeconds: hh*3600 + mm*60 + ss,
		Latitude:         latSign * (float64(latDeg) + (float64(latMin)+float64(latThou)/1000)/60),
		Longitude:        lonSign * (float64(lonDeg) + (float64(lonMin)+float64(lonThou)/1000)/60),
		Valid:            line[24] == 'A',
		PressureAltitude: pressAlt,
		GNSSAltitude:     gpsAlt,
	}, true
}
