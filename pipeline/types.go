package pipeline

import (
	"time"

	igcroute "github.com/lucasjlepore/igc-route"
	"github.com/lucasjlepore/igc-route/igc"
	"github.com/lucasjlepore/igc-route/route"
)

// Artifact file names.
const (
	FlightSummaryFileName = "flight_summary.json"
	WaypointsFileName     = "waypoints.json"
	RouteGPXFileName      = "route.gpx"
	RouteCSVFileName      = "route.csv"
	QRPayloadFileName     = "qr_payload.txt"
	TrackFITFileName      = "track.fit"
	FlightNotesFileName   = "flight_notes.md"
	fixesBaseName         = "fixes"
)

// Options configures the igc_analyze pipeline.
type Options struct {
	IGCPath         string
	OutDir          string
	Level           string // low|medium|high
	Format          string // parquet|csv
	ExportFormat    string // gpx|csv
	Overwrite       bool
	CopySource      bool
	CompressRecords bool
	Now             func() time.Time
}

// BytesOptions configures the in-memory pipeline.
type BytesOptions struct {
	SourceFileName  string
	IGCData         []byte
	Level           string
	Format          string
	ExportFormat    string
	CopySource      bool
	CompressRecords bool
	Now             func() time.Time
}

// Result returns generated output paths.
type Result struct {
	OutputDir         string               `json:"output_dir"`
	ManifestPath      string               `json:"manifest_path"`
	RecordsPath       string               `json:"records_path"`
	SourceCopyPath    string               `json:"source_copy_path,omitempty"`
	FlightSummaryPath string               `json:"flight_summary_path"`
	WaypointsPath     string               `json:"waypoints_path"`
	RouteGPXPath      string               `json:"route_gpx_path"`
	RouteCSVPath      string               `json:"route_csv_path"`
	QRPayloadPath     string               `json:"qr_payload_path,omitempty"`
	FixesPath         string               `json:"fixes_path"`
	TrackFITPath      string               `json:"track_fit_path,omitempty"`
	NotesPath         string               `json:"notes_path"`
	Export            ExportInfo           `json:"export"`
	Stats             igcroute.FlightStats `json:"stats"`
	Warnings          []string             `json:"warnings,omitempty"`
}

// BytesResult holds every artifact keyed by file name.
type BytesResult struct {
	Files    map[string][]byte
	Analysis *igcroute.Analysis
	Payload  *route.Payload
	Export   ExportInfo
	Warnings []string
}

// ExportInfo records the outcome of the size-limited route export.
type ExportInfo struct {
	RequestedFormat route.Format `json:"requested_format"`
	Format          route.Format `json:"format,omitempty"`
	Chars           int          `json:"chars,omitempty"`
	Fallback        bool         `json:"fallback"`
	Error           string       `json:"error,omitempty"`
}

// FixSample is one row of the fixes table.
type FixSample struct {
	FixIndex         int      `json:"fix_index"`
	Time             string   `json:"time"`
	TimestampS       int      `json:"timestamp_s"`
	ElapsedS         int      `json:"elapsed_s"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Valid            bool     `json:"valid"`
	PressureAltitude int      `json:"pressure_altitude_m"`
	GNSSAltitude     int      `json:"gnss_altitude_m"`
	SegmentKm        float64  `json:"segment_km"`
	CumulativeKm     float64  `json:"cumulative_km"`
	VarioMPerMin     *float64 `json:"vario_m_per_min,omitempty"`
}

// FlightSummaryFile is the flight-level aggregate output.
type FlightSummaryFile struct {
	SourceFileName   string                  `json:"source_file_name,omitempty"`
	GeneratedAt      time.Time               `json:"generated_at"`
	Header           igc.FlightHeader        `json:"header"`
	Stats            igcroute.FlightStats    `json:"stats"`
	MalformedRecords int                     `json:"malformed_records"`
	LineCount        int                     `json:"line_count"`
	Level            route.Level             `json:"level"`
	TargetCount      int                     `json:"target_count"`
	CandidateCount   int                     `json:"candidate_count"`
	RouteStructure   igcroute.RouteStructure `json:"route_structure"`
	Export           ExportInfo              `json:"export"`
	Warnings         []string                `json:"warnings,omitempty"`
}

// WaypointsFile lists the simplified route.
type WaypointsFile struct {
	Level          route.Level      `json:"level"`
	DistanceKm     float64          `json:"distance_km"`
	TargetCount    int              `json:"target_count"`
	CandidateCount int              `json:"candidate_count"`
	Waypoints      []route.Waypoint `json:"waypoints"`
}
