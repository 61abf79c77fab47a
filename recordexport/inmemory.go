package recordexport

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"

	"github.com/lucasjlepore/igc-route/igc"
)

// ParsedBundle is the in-memory representation of a line-split log.
type ParsedBundle struct {
	Header          igc.FlightHeader
	Records         []RecordEnvelope
	KindCounts      map[string]int
	FixCount        int
	MalformedCount  int
	ValidUTF8       bool
	SourceSHA256    string
	SourceSizeBytes int64
}

// ParseBytes splits raw log bytes into the same record model used by JSONL
// export. It never fails; problems surface as per-record warnings.
func ParseBytes(data []byte) *ParsedBundle {
	parsed := parseLines(data)
	sum := sha256.Sum256(data)
	return &ParsedBundle{
		Header:          parsed.Header,
		Records:         parsed.Records,
		KindCounts:      parsed.KindCounts,
		FixCount:        parsed.FixCount,
		MalformedCount:  parsed.MalformedCount,
		ValidUTF8:       utf8.Valid(data),
		SourceSHA256:    hex.EncodeToString(sum[:]),
		SourceSizeBytes: int64(len(data)),
	}
}

// BuildManifest describes the bundle. recordsPath is the name of the
// records file relative to the manifest.
func BuildManifest(bundle *ParsedBundle, sourcePath, recordsPath string, generatedAt time.Time) Manifest {
	m := Manifest{
		FormatVersion:     ExportFormatVersion,
		GeneratedAt:       generatedAt.UTC(),
		SourceSHA256:      bundle.SourceSHA256,
		SourceSizeBytes:   bundle.SourceSizeBytes,
		Header:            bundle.Header,
		RecordsPath:       recordsPath,
		RecordsEncoding:   "jsonl",
		RecordCount:       len(bundle.Records),
		KindCounts:        bundle.KindCounts,
		MalformedCount:    bundle.MalformedCount,
		Warnings:          BuildWarningsFromBundle(bundle),
		SchemaDescription: defaultSchema(),
	}
	if strings.HasSuffix(recordsPath, ".zst") {
		m.RecordsEncoding = "jsonl+zstd"
	}
	if sourcePath != "" {
		m.SourceFile = sourcePath
		m.SourceFileName = filepath.Base(sourcePath)
	}
	return m
}

// MarshalJSON renders indented JSON with deterministic key order.
func MarshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out = append(out, '\n')
	return out, nil
}

// MarshalJSONL renders record envelopes as JSONL bytes.
func MarshalJSONL(records []RecordEnvelope) ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriterSize(&buf, 1<<20)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONLZstd renders record envelopes as zstd-compressed JSONL.
func MarshalJSONLZstd(records []RecordEnvelope) ([]byte, error) {
	plain, err := MarshalJSONL(records)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(plain, make([]byte, 0, len(plain)/4)), nil
}

// BuildWarningsFromBundle returns deterministic parse-quality warning notes.
func BuildWarningsFromBundle(bundle *ParsedBundle) []string {
	if bundle == nil {
		return nil
	}
	warnings := make([]string, 0, 4)
	if !bundle.ValidUTF8 {
		warnings = append(warnings, "source is not valid UTF-8")
	}
	if bundle.FixCount == 0 {
		warnings = append(warnings, warnNoFixes)
	}
	if bundle.Header.Date == igc.Unknown {
		warnings = append(warnings, warnMissingDate)
	}
	if bundle.MalformedCount > 0 {
		warnings = append(warnings, fmt.Sprintf("%d malformed B records skipped", bundle.MalformedCount))
	}
	for _, rec := range bundle.Records {
		for _, w := range rec.Warnings {
			if s := strings.TrimSpace(w); s != "" && s != warnMalformedFix {
				warnings = append(warnings, s)
			}
		}
	}
	return dedupeStrings(warnings)
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
