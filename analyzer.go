package igcroute

import (
	"fmt"
	"os"
	"time"

	"github.com/lucasjlepore/igc-route/igc"
	"github.com/lucasjlepore/igc-route/route"
)

// Config controls route simplification.
type Config struct {
	Level route.Level
	// Now stamps generated documents; nil means time.Now.
	Now func() time.Time
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Analysis is the complete result for one flight log. A new Analysis is
// built per call and callers treat it as read-only.
type Analysis struct {
	FilePath         string           `json:"file_path,omitempty"`
	GeneratedAt      time.Time        `json:"generated_at"`
	Header           igc.FlightHeader `json:"header"`
	Stats            FlightStats      `json:"stats"`
	MalformedRecords int              `json:"malformed_records"`
	LineCount        int              `json:"line_count"`
	Level            route.Level      `json:"level"`
	TargetCount      int              `json:"target_count"`
	CandidateCount   int              `json:"candidate_count"`
	Waypoints        []route.Waypoint `json:"waypoints"`
	Structure        RouteStructure   `json:"route_structure"`
	Notes            string           `json:"notes"`

	fixes []igc.Fix
}

// Fixes returns the decoded fixes behind the analysis.
func (a *Analysis) Fixes() []igc.Fix {
	if a == nil {
		return nil
	}
	return a.fixes
}

// AnalyzeFile reads and analyzes an IGC flight log.
func AnalyzeFile(path string, cfg Config) (*Analysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read IGC file: %w", err)
	}
	a := Analyze(string(raw), cfg)
	a.FilePath = path
	return a, nil
}

// Analyze parses raw IGC text and derives statistics, the simplified route
// and notes. It never fails: malformed records are counted and an empty log
// yields an empty analysis.
func Analyze(raw string, cfg Config) *Analysis {
	flight := igc.Parse(raw)
	sel := route.Select(flight.Fixes, cfg.Level)

	a := &Analysis{
		GeneratedAt:      cfg.now().UTC().Truncate(time.Second),
		Header:           flight.Header,
		Stats:            ComputeStats(flight.Fixes),
		MalformedRecords: flight.MalformedRecords,
		LineCount:        flight.LineCount,
		Level:            sel.Level,
		TargetCount:      sel.TargetCount,
		CandidateCount:   sel.CandidateCount,
		Waypoints:        sel.Waypoints,
		fixes:            flight.Fixes,
	}
	a.Structure = BuildRouteStructure(a.Waypoints)
	a.Notes = BuildFlightNotes(a)
	return a
}

// Export renders the analysis route in the requested format, applying the
// compact fallback and size limit of route.Export.
func (a *Analysis) Export(format route.Format) (route.Payload, error) {
	return route.Export(a.Waypoints, route.ExportOptions{
		Format:      format,
		Level:       a.Level,
		GeneratedAt: a.GeneratedAt,
	})
}
