package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/igc-route/recordexport"
)

func main() {
	var (
		outDir     = flag.String("out-dir", "", "Output directory for manifest.json and records.jsonl")
		overwrite  = flag.Bool("overwrite", true, "Allow writing to non-empty output directories")
		copySource = flag.Bool("copy-source", true, "Copy original IGC file into export directory as source.igc")
		compress   = flag.Bool("zstd", false, "Compress records as records.jsonl.zst")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-igc-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	inputPath := flag.Arg(0)
	if strings.TrimSpace(*outDir) == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		*outDir = filepath.Join(".", "exports", base+"_"+recordexport.ExportFormatVersion)
	}

	result, err := recordexport.ExportFile(inputPath, *outDir, recordexport.ExportOptions{
		Overwrite:      *overwrite,
		CopySourceFile: *copySource,
		Compress:       *compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Export complete\n")
	fmt.Printf("Output dir: %s\n", result.OutputDir)
	fmt.Printf("Manifest:   %s\n", result.ManifestPath)
	fmt.Printf("Records:    %s (%d bytes)\n", result.RecordsPath, result.RecordsSizeBytes)
	if result.SourceCopyPath != "" {
		fmt.Printf("Source igc: %s\n", result.SourceCopyPath)
	}
	fmt.Printf("Lines:      %d (%d fixes, %d malformed)\n", result.RecordCount, result.FixCount, result.MalformedCount)
	fmt.Printf("SHA-256:    %s\n", result.SourceSHA256)
}
