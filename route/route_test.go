package route

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lucasjlepore/igc-route/igc"
)

const (
	latStep = 0.0045   // ≈0.5 km north
	lonStep = 0.006473 // ≈0.5 km east at 46°N
)

func makeFix(i int, lat, lon float64, alt int) igc.Fix {
	ts := 10*3600 + i*30
	return igc.Fix{
		Time:             fmt.Sprintf("%02d:%02d:%02d", ts/3600, ts%3600/60, ts%60),
		TimestampSeconds: ts,
		Latitude:         lat,
		Longitude:        lon,
		Valid:            true,
		PressureAltitude: alt,
		GNSSAltitude:     alt + 20,
	}
}

// cornerFlight flies 40 fixes north, 40 east, then 40 south: two 90° turns
// at indices 39 and 79.
func cornerFlight(alt func(i int) int) []igc.Fix {
	fixes := make([]igc.Fix, 0, 120)
	lat, lon := 46.0, 8.0
	for i := 0; i < 120; i++ {
		switch {
		case i == 0:
		case i < 40:
			lat += latStep
		case i < 80:
			lon += lonStep
		default:
			lat -= latStep
		}
		fixes = append(fixes, makeFix(i, lat, lon, alt(i)))
	}
	return fixes
}

func level1000(int) int { return 1000 }

func names(wps []Waypoint) []string {
	out := make([]string, len(wps))
	for i, wp := range wps {
		out[i] = wp.Name
	}
	return out
}

func TestSelectEmpty(t *testing.T) {
	sel := Select(nil, LevelMedium)
	if len(sel.Waypoints) != 0 {
		t.Fatalf("expected no waypoints, got %v", names(sel.Waypoints))
	}
	if sel.TargetCount != 0 || sel.DistanceKm != 0 {
		t.Fatalf("expected zero selection, got %+v", sel)
	}
}

func TestSelectSingleFix(t *testing.T) {
	fix := makeFix(0, 46, 8, 900)
	sel := Select([]igc.Fix{fix}, LevelHigh)
	want := []Waypoint{
		{Name: NameTakeoff, Lat: 46, Lng: 8, Altitude: 900, Time: "10:00:00"},
		{Name: NameLanding, Lat: 46, Lng: 8, Altitude: 900, Time: "10:00:00"},
	}
	if diff := cmp.Diff(want, sel.Waypoints); diff != "" {
		t.Fatalf("waypoints mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectTwoFixesAlwaysTakeoffLanding(t *testing.T) {
	fixes := []igc.Fix{makeFix(0, 46, 8, 900), makeFix(1, 47, 9, 1500)}
	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh} {
		sel := Select(fixes, level)
		if got := names(sel.Waypoints); !cmp.Equal(got, []string{NameTakeoff, NameLanding}) {
			t.Fatalf("level %s: got %v", level, got)
		}
		if sel.TargetCount <= 0 {
			t.Fatalf("level %s: expected a positive budget, got %d", level, sel.TargetCount)
		}
	}
}

func TestSelectStraightLineHasNoInteriorWaypoints(t *testing.T) {
	fixes := make([]igc.Fix, 0, 150)
	for i := 0; i < 150; i++ {
		fixes = append(fixes, makeFix(i, 46+float64(i)*latStep, 8, 1000+i))
	}
	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh} {
		sel := Select(fixes, level)
		if len(sel.Waypoints) != 2 {
			t.Fatalf("level %s: expected 2 waypoints, got %v", level, names(sel.Waypoints))
		}
		if sel.TargetCount <= 0 || sel.CandidateCount != 0 {
			t.Fatalf("level %s: unexpected selection %+v", level, sel)
		}
	}
}

func TestSelectFindsTurnsInPathOrder(t *testing.T) {
	fixes := cornerFlight(level1000)
	sel := Select(fixes, LevelMedium)

	if got, want := names(sel.Waypoints), []string{"TAKEOFF", "TURN1", "TURN2", "LANDING"}; !cmp.Equal(got, want) {
		t.Fatalf("waypoints = %v, want %v", got, want)
	}
	if sel.Waypoints[1].Time != fixes[39].Time || sel.Waypoints[2].Time != fixes[79].Time {
		t.Fatalf("turns at wrong fixes: %+v", sel.Waypoints)
	}
	if sel.TargetCount != 4 {
		t.Fatalf("expected target count 4 for ~60 km at medium, got %d (%.1f km)", sel.TargetCount, sel.DistanceKm)
	}
}

func TestSelectKeepsTurnAndAltitudeCandidatesForSameFix(t *testing.T) {
	fixes := cornerFlight(func(i int) int {
		if i == 39 {
			return 1200
		}
		return 1000
	})
	sel := Select(fixes, LevelMedium)

	if got, want := names(sel.Waypoints), []string{"TAKEOFF", "TURN1", "WP2", "TURN3", "LANDING"}; !cmp.Equal(got, want) {
		t.Fatalf("waypoints = %v, want %v", got, want)
	}
	if sel.Waypoints[1].Time != sel.Waypoints[2].Time {
		t.Fatalf("expected TURN1 and WP2 to come from the same fix: %+v", sel.Waypoints[1:3])
	}
	if sel.CandidateCount != 3 {
		t.Fatalf("expected 3 candidates, got %d", sel.CandidateCount)
	}
}

func TestSelectHonoursBudget(t *testing.T) {
	fixes := make([]igc.Fix, 0, 120)
	lat, lon := 46.0, 8.0
	for i := 0; i < 120; i++ {
		if i > 0 {
			if i%2 == 1 {
				lon += lonStep
			} else {
				lat += latStep
			}
		}
		fixes = append(fixes, makeFix(i, lat, lon, 1000))
	}

	sel := Select(fixes, LevelMedium)
	if sel.CandidateCount <= sel.TargetCount {
		t.Fatalf("expected more candidates (%d) than budget (%d)", sel.CandidateCount, sel.TargetCount)
	}
	if len(sel.Waypoints) != sel.TargetCount+2 {
		t.Fatalf("expected %d waypoints, got %d", sel.TargetCount+2, len(sel.Waypoints))
	}
	for i, wp := range sel.Waypoints[1 : len(sel.Waypoints)-1] {
		if want := fmt.Sprintf("TURN%d", i+1); wp.Name != want {
			t.Fatalf("waypoint %d named %q, want %q", i+1, wp.Name, want)
		}
	}
	assertPathOrdered(t, sel.Waypoints)
}

func TestSelectLongFlightStaysWithinLimit(t *testing.T) {
	fixes := make([]igc.Fix, 0, 3000)
	lat, lon := 46.0, 8.0
	for i := 0; i < 3000; i++ {
		if i > 0 {
			if (i/7)%2 == 0 {
				lon += lonStep / 2
			} else {
				lat += latStep / 2
			}
		}
		alt := 1000
		if i%50 == 25 {
			alt = 1600
		}
		fixes = append(fixes, makeFix(i, lat, lon, alt))
	}
	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh} {
		sel := Select(fixes, level)
		if n := len(sel.Waypoints); n < 2 || n > MaxWaypoints {
			t.Fatalf("level %s: %d waypoints outside [2, %d]", level, n, MaxWaypoints)
		}
		if sel.Waypoints[0].Name != NameTakeoff || sel.Waypoints[len(sel.Waypoints)-1].Name != NameLanding {
			t.Fatalf("level %s: bad endpoints %v", level, names(sel.Waypoints))
		}
	}
}

func TestSelectSkipsNearDuplicatePoints(t *testing.T) {
	// The corner fix sits 50 m after its predecessor, so the sharp turn there
	// is not scored.
	fixes := []igc.Fix{
		makeFix(0, 46.0, 8.0, 1000),
		makeFix(1, 46.0+latStep, 8.0, 1000),
		makeFix(2, 46.0+latStep+latStep/10, 8.0, 1000),
		makeFix(3, 46.0+latStep+latStep/10, 8.0+lonStep, 1000),
		makeFix(4, 46.0+latStep+latStep/10, 8.0+2*lonStep, 1000),
	}
	sel := Select(fixes, LevelLow)
	if len(sel.Waypoints) != 2 {
		t.Fatalf("expected the near-duplicate corner to be skipped, got %v", names(sel.Waypoints))
	}
}

func TestSelectUnknownLevelFallsBackToDefault(t *testing.T) {
	sel := Select(cornerFlight(level1000), Level("bogus"))
	if sel.Level != DefaultLevel {
		t.Fatalf("expected default level, got %q", sel.Level)
	}
}

func TestDownsample(t *testing.T) {
	fixes := make([]igc.Fix, 1003)
	samples := downsample(fixes)
	if samples[0].index != 0 {
		t.Fatalf("first sample index = %d", samples[0].index)
	}
	if last := samples[len(samples)-1].index; last != 1002 {
		t.Fatalf("last sample index = %d, want 1002", last)
	}
	// stride 5: 0,5,...,1000 plus the forced final fix.
	if len(samples) != 202 {
		t.Fatalf("expected 202 samples, got %d", len(samples))
	}
	for i := 1; i < len(samples)-1; i++ {
		if samples[i].index-samples[i-1].index != 5 {
			t.Fatalf("unexpected stride at %d: %d", i, samples[i].index-samples[i-1].index)
		}
	}

	small := downsample(make([]igc.Fix, 10))
	if len(small) != 10 {
		t.Fatalf("short logs must not be thinned, got %d samples", len(small))
	}
}

func TestTargetCount(t *testing.T) {
	tests := []struct {
		distance float64
		level    Level
		want     int
	}{
		{0, LevelLow, 2},
		{20, LevelLow, 2},
		{20.5, LevelLow, 3},
		{60, LevelMedium, 4},
		{100, LevelHigh, 4},
		{150, LevelHigh, 6},
		{300, LevelLow, 13},
		{1000, LevelLow, 13},
		{1000, LevelMedium, 11},
		{1000, LevelHigh, 8},
	}
	for _, tt := range tests {
		if got := TargetCount(tt.distance, tt.level); got != tt.want {
			t.Fatalf("TargetCount(%v, %s) = %d, want %d", tt.distance, tt.level, got, tt.want)
		}
	}
}

func TestTargetCountMonotonic(t *testing.T) {
	for _, level := range []Level{LevelLow, LevelMedium, LevelHigh} {
		prev := 0
		for d := 0.0; d <= 2000; d += 0.5 {
			got := TargetCount(d, level)
			if got < prev {
				t.Fatalf("level %s: TargetCount dropped from %d to %d at %.1f km", level, prev, got, d)
			}
			if got > MaxWaypoints-2 {
				t.Fatalf("level %s: TargetCount %d exceeds cap at %.1f km", level, got, d)
			}
			prev = got
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"": LevelMedium, "LOW": LevelLow, " medium ": LevelMedium, "high": LevelHigh}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseLevel("extreme"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if !strings.Contains(LevelHigh.String(), "high") {
		t.Fatalf("unexpected level string %q", LevelHigh.String())
	}
}

func assertPathOrdered(t *testing.T, wps []Waypoint) {
	t.Helper()
	for i := 1; i < len(wps); i++ {
		if wps[i].Time < wps[i-1].Time {
			t.Fatalf("waypoints out of path order at %d: %s after %s", i, wps[i].Time, wps[i-1].Time)
		}
	}
}
