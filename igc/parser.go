package igc

import "strings"

// RecordKind classifies a log line by its leading record type.
type RecordKind string

const (
	KindFix    RecordKind = "fix"    // B
	KindHeader RecordKind = "header" // H
	KindLogger RecordKind = "logger" // A
	KindTask   RecordKind = "task"   // C, ignored
	KindOther  RecordKind = "other"
	KindBlank  RecordKind = "blank"
)

// Flight is the decoded content of one log.
type Flight struct {
	Header           FlightHeader `json:"header"`
	Fixes            []Fix        `json:"fixes"`
	MalformedRecords int          `json:"malformed_records"`
	LineCount        int          `json:"line_count"`
}

// Classify reports the record kind of a single line.
func Classify(line string) RecordKind {
	if strings.TrimSpace(line) == "" {
		return KindBlank
	}
	switch line[0] {
	case 'B':
		return KindFix
	case 'H':
		return KindHeader
	case 'A':
		return KindLogger
	case 'C':
		return KindTask
	}
	return KindOther
}

// SplitLines splits raw log text on newlines, dropping the carriage return
// that DOS-style logs carry.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Parse decodes a whole log. Fixes keep file order; header lines are
// collected wherever they appear. Broken B records are counted and skipped.
func Parse(text string) Flight {
	lines := SplitLines(text)
	flight := Flight{
		Header:    NewFlightHeader(),
		Fixes:     make([]Fix, 0, len(lines)),
		LineCount: len(lines),
	}
	for _, line := range lines {
		switch Classify(line) {
		case KindFix:
			fix, ok := DecodeFix(line)
			if !ok {
				flight.MalformedRecords++
				continue
			}
			flight.Fixes = append(flight.Fixes, fix)
		case KindHeader, KindLogger:
			if f, ok := DecodeHeaderLine(line); ok {
				flight.Header.Apply(f)
			}
		}
	}
	return flight
}
