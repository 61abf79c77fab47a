package recordexport

import (
	"time"

	"github.com/lucasjlepore/igc-route/igc"
)

const (
	// ExportFormatVersion identifies the on-disk schema for record exports.
	ExportFormatVersion = "igc_records_jsonl_v1"

	RecordsFileName           = "records.jsonl"
	CompressedRecordsFileName = "records.jsonl.zst"
	ManifestFileName          = "manifest.json"
	SourceCopyFileName        = "source.igc"
)

// ExportOptions controls export behavior.
type ExportOptions struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// CopySourceFile writes a byte-for-byte copy of the source log to the output directory.
	CopySourceFile bool

	// Compress writes records.jsonl.zst instead of records.jsonl.
	Compress bool
}

// ExportResult describes generated files.
type ExportResult struct {
	OutputDir        string `json:"output_dir"`
	ManifestPath     string `json:"manifest_path"`
	RecordsPath      string `json:"records_path"`
	SourceCopyPath   string `json:"source_copy_path,omitempty"`
	RecordCount      int    `json:"record_count"`
	FixCount         int    `json:"fix_count"`
	MalformedCount   int    `json:"malformed_count"`
	SourceSHA256     string `json:"source_sha256"`
	SourceSizeBytes  int64  `json:"source_size_bytes"`
	RecordsSizeBytes int64  `json:"records_size_bytes"`
}

// Manifest captures export metadata and pointers to exported files.
type Manifest struct {
	FormatVersion     string           `json:"format_version"`
	GeneratedAt       time.Time        `json:"generated_at"`
	SourceFile        string           `json:"source_file,omitempty"`
	SourceFileName    string           `json:"source_file_name,omitempty"`
	SourceSHA256      string           `json:"source_sha256"`
	SourceSizeBytes   int64            `json:"source_size_bytes"`
	Header            igc.FlightHeader `json:"header"`
	RecordsPath       string           `json:"records_path"`
	RecordsEncoding   string           `json:"records_encoding"`
	RecordCount       int              `json:"record_count"`
	KindCounts        map[string]int   `json:"kind_counts"`
	MalformedCount    int              `json:"malformed_count"`
	Warnings          []string         `json:"warnings,omitempty"`
	SchemaDescription SchemaDetails    `json:"schema_description"`
}

// SchemaDetails documents the record shape for downstream applications.
type SchemaDetails struct {
	RecordType string   `json:"record_type"`
	Notes      []string `json:"notes"`
}

// RecordEnvelope is one JSONL line in records.jsonl.
// The stream preserves original line order.
type RecordEnvelope struct {
	FormatVersion string           `json:"format_version"`
	LineNumber    int              `json:"line_number"` // 1-based
	ByteOffset    int64            `json:"byte_offset"`
	RecordType    string           `json:"record_type"` // leading character, empty for blank lines
	RecordKind    igc.RecordKind   `json:"record_kind"`
	Raw           string           `json:"raw"`
	CRLF          bool             `json:"crlf,omitempty"`
	Fix           *igc.Fix         `json:"fix,omitempty"`
	HeaderField   *igc.HeaderField `json:"header_field,omitempty"`
	Malformed     bool             `json:"malformed,omitempty"`
	Warnings      []string         `json:"warnings,omitempty"`
}

func defaultSchema() SchemaDetails {
	return SchemaDetails{
		RecordType: "JSONL line-per-IGC-record preserving original order and byte offsets",
		Notes: []string{
			"Lossless: every source line is exported verbatim in raw, with its line terminator flagged.",
			"B records carry the decoded fix; broken B records are flagged malformed instead of dropped.",
			"Recognised H and A records carry the decoded header field.",
			"Use line_number and byte_offset for deterministic chunking.",
		},
	}
}
