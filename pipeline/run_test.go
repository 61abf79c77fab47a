package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tormoder/fit"

	igcroute "github.com/lucasjlepore/igc-route"
	"github.com/lucasjlepore/igc-route/igc"
	"github.com/lucasjlepore/igc-route/recordexport"
	"github.com/lucasjlepore/igc-route/route"
)

func fixedNow() time.Time {
	return time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
}

// syntheticLog flies an L-shaped track starting at 23:58:00 so it crosses
// midnight.
func syntheticLog() string {
	lines := []string{
		"AXSYLOG42",
		"HFDTE010824",
		"HFPLTPILOTINCHARGE:Kim Park",
		"HFGTYGLIDERTYPE:Ozone Zeno",
	}
	lat, lon := 45*60000+30000, 6*60000
	for i := 0; i < 60; i++ {
		if i > 0 && i < 30 {
			lat += 270
		} else if i >= 30 {
			lon += 380
		}
		ts := (86280 + 20*i) % 86400
		alt := 1500 + 10*i
		lines = append(lines, fmt.Sprintf(
			"B%02d%02d%02d%02d%05dN%03d%05dEA%05d%05d",
			ts/3600, (ts%3600)/60, ts%60,
			lat/60000, lat%60000, lon/60000, lon%60000,
			alt, alt+30,
		))
	}
	lines = append(lines, "Bgarbage-record-that-is-long-enough-xx")
	return strings.Join(lines, "\n") + "\n"
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		SourceFileName: "synthetic.igc",
		IGCData:        []byte(syntheticLog()),
		Level:          "high",
		Format:         "csv",
		ExportFormat:   "csv",
		CopySource:     true,
		Now:            fixedNow,
	})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}

	required := []string{
		recordexport.ManifestFileName,
		recordexport.RecordsFileName,
		FlightSummaryFileName,
		WaypointsFileName,
		RouteGPXFileName,
		RouteCSVFileName,
		QRPayloadFileName,
		"fixes.csv",
		TrackFITFileName,
		FlightNotesFileName,
		recordexport.SourceCopyFileName,
	}
	for _, name := range required {
		if _, ok := res.Files[name]; !ok {
			t.Fatalf("missing artifact %s", name)
		}
	}
	if len(res.Files) != len(required) {
		t.Fatalf("expected %d artifacts, got %d", len(required), len(res.Files))
	}

	if res.Analysis.Stats.DurationSeconds != 59*20 {
		t.Fatalf("duration = %d, want %d", res.Analysis.Stats.DurationSeconds, 59*20)
	}
	if res.Analysis.MalformedRecords != 1 {
		t.Fatalf("malformed = %d", res.Analysis.MalformedRecords)
	}
	if res.Payload == nil || string(res.Files[QRPayloadFileName]) != res.Payload.Text {
		t.Fatal("qr payload does not match export payload")
	}
	if res.Export.Format != route.FormatCSV || res.Export.Fallback {
		t.Fatalf("unexpected export info %+v", res.Export)
	}

	var summary FlightSummaryFile
	if err := json.Unmarshal(res.Files[FlightSummaryFileName], &summary); err != nil {
		t.Fatalf("unmarshal flight summary: %v", err)
	}
	if summary.Header.Pilot != "Kim Park" || summary.Level != route.LevelHigh {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if !summary.GeneratedAt.Equal(fixedNow()) {
		t.Fatalf("generated at = %v", summary.GeneratedAt)
	}

	var wps WaypointsFile
	if err := json.Unmarshal(res.Files[WaypointsFileName], &wps); err != nil {
		t.Fatalf("unmarshal waypoints: %v", err)
	}
	if len(wps.Waypoints) < 2 || wps.Waypoints[0].Name != route.NameTakeoff {
		t.Fatalf("unexpected waypoints %+v", wps.Waypoints)
	}

	rows, err := csv.NewReader(bytes.NewReader(res.Files["fixes.csv"])).ReadAll()
	if err != nil {
		t.Fatalf("read fixes csv: %v", err)
	}
	if len(rows) != 61 {
		t.Fatalf("expected header + 60 rows, got %d", len(rows))
	}
	for i, col := range fixesCSVHeader {
		if rows[0][i] != col {
			t.Fatalf("unexpected header column %d: got %q want %q", i, rows[0][i], col)
		}
	}
	if last := rows[60]; last[3] != "1180" {
		t.Fatalf("elapsed across midnight = %s, want 1180", last[3])
	}

	if !bytes.Equal(res.Files[recordexport.SourceCopyFileName], []byte(syntheticLog())) {
		t.Fatal("source copy differs from input")
	}
}

func TestRunBytesTrackFITDecodes(t *testing.T) {
	res, err := RunBytes(BytesOptions{IGCData: []byte(syntheticLog()), Format: "csv", Now: fixedNow})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}

	decoded, err := fit.Decode(bytes.NewReader(res.Files[TrackFITFileName]))
	if err != nil {
		t.Fatalf("decode track.fit: %v", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		t.Fatalf("activity FIT expected: %v", err)
	}
	if len(activity.Records) != 60 {
		t.Fatalf("expected 60 records, got %d", len(activity.Records))
	}
	if len(activity.Sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(activity.Sessions))
	}

	fixes := res.Analysis.Fixes()
	first, last := activity.Records[0], activity.Records[59]
	if math.Abs(first.PositionLat.Degrees()-fixes[0].Latitude) > 1e-6 ||
		math.Abs(first.PositionLong.Degrees()-fixes[0].Longitude) > 1e-6 {
		t.Fatalf("first position %v/%v, want %v/%v",
			first.PositionLat.Degrees(), first.PositionLong.Degrees(), fixes[0].Latitude, fixes[0].Longitude)
	}
	if got := first.GetAltitudeScaled(); got != float64(fixes[0].PressureAltitude) {
		t.Fatalf("first altitude = %v, want %d", got, fixes[0].PressureAltitude)
	}

	wantStart := time.Date(2024, 8, 1, 23, 58, 0, 0, time.UTC)
	if !first.Timestamp.Equal(wantStart) {
		t.Fatalf("first timestamp = %v, want %v", first.Timestamp, wantStart)
	}
	if got := last.Timestamp.Sub(first.Timestamp); got != 1180*time.Second {
		t.Fatalf("track spans %v, want 19m40s", got)
	}
}

func TestRunBytesEmptyLog(t *testing.T) {
	res, err := RunBytes(BytesOptions{IGCData: []byte("HFDTE010824\n"), Format: "csv"})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}
	if _, ok := res.Files[TrackFITFileName]; ok {
		t.Fatal("track.fit should not be produced without fixes")
	}
	if _, ok := res.Files[QRPayloadFileName]; ok {
		t.Fatal("qr payload should not be produced without waypoints")
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "no position fixes") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected empty-flight warning, got %v", res.Warnings)
	}
}

func TestRunBytesRejectsBadOptions(t *testing.T) {
	cases := []BytesOptions{
		{Format: "xlsx"},
		{Level: "extreme"},
		{ExportFormat: "kml"},
	}
	for _, opts := range cases {
		if _, err := RunBytes(opts); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}

func TestRunWritesParquetAndArtifacts(t *testing.T) {
	tmp := t.TempDir()
	igcPath := filepath.Join(tmp, "flight.igc")
	if err := os.WriteFile(igcPath, []byte(syntheticLog()), 0o644); err != nil {
		t.Fatalf("write igc: %v", err)
	}

	outDir := filepath.Join(tmp, "out")
	res, err := Run(Options{
		IGCPath:         igcPath,
		OutDir:          outDir,
		CopySource:      true,
		CompressRecords: true,
		Now:             fixedNow,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, path := range []string{
		res.ManifestPath, res.RecordsPath, res.FlightSummaryPath, res.WaypointsPath,
		res.RouteGPXPath, res.RouteCSVPath, res.FixesPath, res.TrackFITPath,
		res.NotesPath, res.SourceCopyPath,
	} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
		if info.Size() == 0 {
			t.Fatalf("artifact %s is empty", path)
		}
	}
	if filepath.Ext(res.FixesPath) != ".parquet" || filepath.Base(res.RecordsPath) != recordexport.CompressedRecordsFileName {
		t.Fatalf("unexpected paths %s / %s", res.FixesPath, res.RecordsPath)
	}
	if res.Stats.FixCount != 60 {
		t.Fatalf("fix count = %d", res.Stats.FixCount)
	}

	if res.QRPayloadPath == "" || res.Export.RequestedFormat != route.FormatGPX {
		t.Fatalf("unexpected export info %+v", res.Export)
	}

	if _, err := Run(Options{IGCPath: igcPath, OutDir: outDir}); err == nil {
		t.Fatal("expected error for non-empty output directory without overwrite")
	}
	if _, err := Run(Options{IGCPath: igcPath, OutDir: outDir, Overwrite: true, Format: "csv"}); err != nil {
		t.Fatalf("Run() with overwrite error: %v", err)
	}
}

func TestBuildFixSamples(t *testing.T) {
	fixes := []igc.Fix{
		{Time: "23:59:50", TimestampSeconds: 86390, Latitude: 45, Longitude: 7, PressureAltitude: 100},
		{Time: "23:59:50", TimestampSeconds: 86390, Latitude: 45, Longitude: 7, PressureAltitude: 120},
		{Time: "00:00:20", TimestampSeconds: 20, Latitude: 46, Longitude: 7, PressureAltitude: 150},
	}
	samples := buildFixSamples(fixes)
	if samples[1].VarioMPerMin != nil {
		t.Fatal("vario must be absent for a zero time delta")
	}
	if samples[2].ElapsedS != 30 {
		t.Fatalf("elapsed = %d, want 30", samples[2].ElapsedS)
	}
	if samples[2].VarioMPerMin != nil {
		t.Fatal("vario must be absent across a negative raw time delta")
	}
	want := igcroute.ComputeStats(fixes).DistanceKm
	if math.Abs(samples[2].CumulativeKm-want) > 1e-9 {
		t.Fatalf("cumulative = %v, want %v", samples[2].CumulativeKm, want)
	}
}

func TestEncodeFITAltitude(t *testing.T) {
	cases := map[int]uint16{-600: 0, -500: 0, 0: 2500, 1234: 8670, 20000: fitAltitudeMax}
	for in, want := range cases {
		if got := encodeFITAltitude(in); got != want {
			t.Fatalf("encodeFITAltitude(%d) = %d, want %d", in, got, want)
		}
	}
}
