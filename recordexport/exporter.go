package recordexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportFile parses an IGC log and writes a lossless, line-per-record export bundle.
// Output files:
//   - manifest.json
//   - records.jsonl (records.jsonl.zst with Compress)
//   - source.igc (optional)
func ExportFile(inputPath, outputDir string, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read igc file: %w", err)
	}
	bundle := ParseBytes(data)

	if err := EnsureOutputDir(outputDir, opts.Overwrite); err != nil {
		return nil, err
	}

	recordsName := RecordsFileName
	marshal := MarshalJSONL
	if opts.Compress {
		recordsName = CompressedRecordsFileName
		marshal = MarshalJSONLZstd
	}
	records, err := marshal(bundle.Records)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", recordsName, err)
	}
	recordsPath := filepath.Join(outputDir, recordsName)
	if err := os.WriteFile(recordsPath, records, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", recordsName, err)
	}

	manifest := BuildManifest(bundle, inputPath, recordsName, time.Now())
	manifestData, err := MarshalJSON(manifest)
	if err != nil {
		return nil, fmt.Errorf("encode manifest.json: %w", err)
	}
	manifestPath := filepath.Join(outputDir, ManifestFileName)
	if err := os.WriteFile(manifestPath, manifestData, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySourceFile {
		sourceCopyPath = filepath.Join(outputDir, SourceCopyFileName)
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source igc file: %w", err)
		}
	}

	return &ExportResult{
		OutputDir:        outputDir,
		ManifestPath:     manifestPath,
		RecordsPath:      recordsPath,
		SourceCopyPath:   sourceCopyPath,
		RecordCount:      len(bundle.Records),
		FixCount:         bundle.FixCount,
		MalformedCount:   bundle.MalformedCount,
		SourceSHA256:     bundle.SourceSHA256,
		SourceSizeBytes:  bundle.SourceSizeBytes,
		RecordsSizeBytes: int64(len(records)),
	}, nil
}

// EnsureOutputDir creates path and refuses a non-empty directory unless
// overwrite is set.
func EnsureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
