package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/igc-route/pipeline"
)

func main() {
	var (
		igcPath      = flag.String("igc", "", "Path to input .igc flight log")
		outDir       = flag.String("out", "", "Output directory")
		level        = flag.String("level", "medium", "Route detail level: low|medium|high")
		format       = flag.String("format", "parquet", "Fixes table format: parquet|csv")
		exportFormat = flag.String("export-format", "gpx", "QR payload format: gpx|csv")
		compress     = flag.Bool("zstd", false, "Write records.jsonl.zst instead of records.jsonl")
		overwrite    = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --igc flight.igc --out outdir [--level low|medium|high] [--format parquet|csv] [--export-format gpx|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*igcPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		IGCPath:         *igcPath,
		OutDir:          *outDir,
		Level:           *level,
		Format:          *format,
		ExportFormat:    *exportFormat,
		Overwrite:       *overwrite,
		CopySource:      true,
		CompressRecords: *compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "igc_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("igc_analyze complete\n")
	fmt.Printf("Output dir:          %s\n", result.OutputDir)
	fmt.Printf("records:             %s\n", result.RecordsPath)
	fmt.Printf("manifest.json:       %s\n", result.ManifestPath)
	fmt.Printf("flight summary:      %s\n", result.FlightSummaryPath)
	fmt.Printf("waypoints:           %s\n", result.WaypointsPath)
	fmt.Printf("route gpx:           %s\n", result.RouteGPXPath)
	fmt.Printf("route csv:           %s\n", result.RouteCSVPath)
	fmt.Printf("fixes table:         %s\n", result.FixesPath)
	if result.TrackFITPath != "" {
		fmt.Printf("fit track:           %s\n", result.TrackFITPath)
	}
	fmt.Printf("flight notes:        %s\n", result.NotesPath)
	if result.QRPayloadPath != "" {
		fmt.Printf("qr payload:          %s (%s, %d chars)\n", result.QRPayloadPath, result.Export.Format, result.Export.Chars)
	}
	if result.SourceCopyPath != "" {
		fmt.Printf("source copy:         %s\n", result.SourceCopyPath)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning:             %s\n", w)
	}
}
