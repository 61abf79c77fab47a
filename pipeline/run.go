package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	igcroute "github.com/lucasjlepore/igc-route"
	"github.com/lucasjlepore/igc-route/geodesy"
	"github.com/lucasjlepore/igc-route/igc"
	"github.com/lucasjlepore/igc-route/recordexport"
	"github.com/lucasjlepore/igc-route/route"
)

const writeConcurrency = 4

// Run executes the full igc_analyze pipeline and writes all artifacts into
// opts.OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.IGCPath) == "" {
		return nil, fmt.Errorf("igc path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.IGCPath)
	if err != nil {
		return nil, fmt.Errorf("read igc file: %w", err)
	}

	// Parquet goes straight to disk through the local writer; everything
	// else is rendered in memory first.
	streamParquet := format == "parquet"
	res, samples, err := runBytes(BytesOptions{
		SourceFileName:  filepath.Base(opts.IGCPath),
		IGCData:         data,
		Level:           opts.Level,
		Format:          format,
		ExportFormat:    opts.ExportFormat,
		CopySource:      opts.CopySource,
		CompressRecords: opts.CompressRecords,
		Now:             opts.Now,
	}, !streamParquet)
	if err != nil {
		return nil, err
	}

	if err := recordexport.EnsureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Files))
	for name := range res.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var g errgroup.Group
	g.SetLimit(writeConcurrency)
	for _, name := range names {
		name := name
		path := filepath.Join(opts.OutDir, name)
		content := res.Files[name]
		g.Go(func() error {
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			return nil
		})
	}
	fixesPath := filepath.Join(opts.OutDir, fixesFileName(format))
	if streamParquet {
		g.Go(func() error {
			if err := writeFixesParquet(fixesPath, samples); err != nil {
				return fmt.Errorf("write fixes parquet: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{
		OutputDir:         opts.OutDir,
		ManifestPath:      filepath.Join(opts.OutDir, recordexport.ManifestFileName),
		RecordsPath:       filepath.Join(opts.OutDir, recordsFileName(opts.CompressRecords)),
		FlightSummaryPath: filepath.Join(opts.OutDir, FlightSummaryFileName),
		WaypointsPath:     filepath.Join(opts.OutDir, WaypointsFileName),
		RouteGPXPath:      filepath.Join(opts.OutDir, RouteGPXFileName),
		RouteCSVPath:      filepath.Join(opts.OutDir, RouteCSVFileName),
		FixesPath:         fixesPath,
		NotesPath:         filepath.Join(opts.OutDir, FlightNotesFileName),
		Export:            res.Export,
		Stats:             res.Analysis.Stats,
		Warnings:          res.Warnings,
	}
	if _, ok := res.Files[QRPayloadFileName]; ok {
		out.QRPayloadPath = filepath.Join(opts.OutDir, QRPayloadFileName)
	}
	if _, ok := res.Files[TrackFITFileName]; ok {
		out.TrackFITPath = filepath.Join(opts.OutDir, TrackFITFileName)
	}
	if _, ok := res.Files[recordexport.SourceCopyFileName]; ok {
		out.SourceCopyPath = filepath.Join(opts.OutDir, recordexport.SourceCopyFileName)
	}
	return out, nil
}

// RunBytes executes the pipeline in memory and returns every artifact keyed
// by file name. It is the entry point for environments without a
// filesystem.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	res, _, err := runBytes(opts, true)
	return res, err
}

func runBytes(opts BytesOptions, renderFixesTable bool) (*BytesResult, []FixSample, error) {
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, nil, err
	}
	level, err := route.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	exportFormat, err := route.ParseFormat(opts.ExportFormat)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	bundle := recordexport.ParseBytes(opts.IGCData)
	analysis := igcroute.Analyze(string(opts.IGCData), igcroute.Config{Level: level, Now: now})
	samples := buildFixSamples(analysis.Fixes())

	warnings := recordexport.BuildWarningsFromBundle(bundle)
	export := ExportInfo{RequestedFormat: exportFormat}
	var payload *route.Payload
	if len(analysis.Waypoints) > 0 {
		p, err := analysis.Export(exportFormat)
		switch {
		case errors.Is(err, route.ErrExportTooLarge):
			export.Error = err.Error()
			warnings = append(warnings, fmt.Sprintf("route export too large at %s detail; choose a coarser level", level))
		case err != nil:
			return nil, nil, fmt.Errorf("export route: %w", err)
		default:
			payload = &p
			export.Format = p.Format
			export.Chars = p.Chars
			export.Fallback = p.Fallback
		}
	}

	res := &BytesResult{
		Files:    make(map[string][]byte, 12),
		Analysis: analysis,
		Payload:  payload,
		Export:   export,
		Warnings: warnings,
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	add := func(name string, render func() ([]byte, error)) {
		g.Go(func() error {
			content, err := render()
			if err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}
			mu.Lock()
			res.Files[name] = content
			mu.Unlock()
			return nil
		})
	}

	recordsName := recordsFileName(opts.CompressRecords)
	add(recordexport.ManifestFileName, func() ([]byte, error) {
		m := recordexport.BuildManifest(bundle, opts.SourceFileName, recordsName, analysis.GeneratedAt)
		return recordexport.MarshalJSON(m)
	})
	add(recordsName, func() ([]byte, error) {
		if opts.CompressRecords {
			return recordexport.MarshalJSONLZstd(bundle.Records)
		}
		return recordexport.MarshalJSONL(bundle.Records)
	})
	add(FlightSummaryFileName, func() ([]byte, error) {
		return recordexport.MarshalJSON(FlightSummaryFile{
			SourceFileName:   opts.SourceFileName,
			GeneratedAt:      analysis.GeneratedAt,
			Header:           analysis.Header,
			Stats:            analysis.Stats,
			MalformedRecords: analysis.MalformedRecords,
			LineCount:        analysis.LineCount,
			Level:            analysis.Level,
			TargetCount:      analysis.TargetCount,
			CandidateCount:   analysis.CandidateCount,
			RouteStructure:   analysis.Structure,
			Export:           export,
			Warnings:         warnings,
		})
	})
	add(WaypointsFileName, func() ([]byte, error) {
		return recordexport.MarshalJSON(WaypointsFile{
			Level:          analysis.Level,
			DistanceKm:     analysis.Stats.DistanceKm,
			TargetCount:    analysis.TargetCount,
			CandidateCount: analysis.CandidateCount,
			Waypoints:      analysis.Waypoints,
		})
	})
	add(RouteGPXFileName, func() ([]byte, error) {
		out, err := route.MarshalGPX(analysis.Waypoints, analysis.Level, analysis.GeneratedAt)
		return []byte(out), err
	})
	add(RouteCSVFileName, func() ([]byte, error) {
		out, err := route.MarshalCSV(analysis.Waypoints)
		return []byte(out), err
	})
	add(FlightNotesFileName, func() ([]byte, error) {
		return []byte("# Flight notes\n\n" + analysis.Notes + "\n"), nil
	})
	if payload != nil {
		add(QRPayloadFileName, func() ([]byte, error) {
			return []byte(payload.Text), nil
		})
	}
	if renderFixesTable {
		add(fixesFileName(format), func() ([]byte, error) {
			if format == "csv" {
				return marshalFixesCSV(samples)
			}
			return marshalFixesParquet(samples)
		})
	}
	if len(analysis.Fixes()) > 0 {
		add(TrackFITFileName, func() ([]byte, error) {
			return marshalTrackFIT(analysis.Fixes(), flightDate(analysis.Header, analysis.GeneratedAt))
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if opts.CopySource {
		res.Files[recordexport.SourceCopyFileName] = append([]byte(nil), opts.IGCData...)
	}
	return res, samples, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func fixesFileName(format string) string {
	if format == "csv" {
		return fixesBaseName + ".csv"
	}
	return fixesBaseName + ".parquet"
}

func recordsFileName(compress bool) string {
	if compress {
		return recordexport.CompressedRecordsFileName
	}
	return recordexport.RecordsFileName
}

// flightDate anchors B-record times of day to a calendar day, falling back
// to the generation date when the header carries none.
func flightDate(h igc.FlightHeader, fallback time.Time) time.Time {
	if d, err := time.Parse("2006-01-02", h.Date); err == nil {
		return d
	}
	y, m, d := fallback.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buildFixSamples(fixes []igc.Fix) []FixSample {
	out := make([]FixSample, 0, len(fixes))
	cumulative := 0.0
	for i, f := range fixes {
		s := FixSample{
			FixIndex:         i,
			Time:             f.Time,
			TimestampS:       f.TimestampSeconds,
			Lat:              f.Latitude,
			Lng:              f.Longitude,
			Valid:            f.Valid,
			PressureAltitude: f.PressureAltitude,
			GNSSAltitude:     f.GNSSAltitude,
		}
		if i > 0 {
			prev := fixes[i-1]
			s.SegmentKm = geodesy.DistanceKm(prev.Latitude, prev.Longitude, f.Latitude, f.Longitude)
			cumulative += s.SegmentKm
			s.ElapsedS = out[i-1].ElapsedS + clockDelta(prev.TimestampSeconds, f.TimestampSeconds)
			if dt := f.TimestampSeconds - prev.TimestampSeconds; dt > 0 {
				v := float64(f.PressureAltitude-prev.PressureAltitude) / float64(dt) * 60
				s.VarioMPerMin = &v
			}
		}
		s.CumulativeKm = cumulative
		out = append(out, s)
	}
	return out
}

// clockDelta is the forward distance between two times of day, treating a
// large backwards jump as a midnight crossing.
func clockDelta(prev, cur int) int {
	d := cur - prev
	if d < -secondsPerDay/2 {
		d += secondsPerDay
	}
	return d
}

const secondsPerDay = 86400

var fixesCSVHeader = []string{
	"fix_index", "time", "timestamp_s", "elapsed_s", "lat", "lng", "valid",
	"pressure_altitude_m", "gnss_altitude_m", "segment_km", "cumulative_km", "vario_m_per_min",
}

func marshalFixesCSV(samples []FixSample) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(fixesCSVHeader); err != nil {
		return nil, err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.FixIndex),
			s.Time,
			strconv.Itoa(s.TimestampS),
			strconv.Itoa(s.ElapsedS),
			formatFloat(s.Lat),
			formatFloat(s.Lng),
			strconv.FormatBool(s.Valid),
			strconv.Itoa(s.PressureAltitude),
			strconv.Itoa(s.GNSSAltitude),
			formatFloat(s.SegmentKm),
			formatFloat(s.CumulativeKm),
			formatFloatPtr(s.VarioMPerMin),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
