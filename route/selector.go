package route

import (
	"fmt"
	"math"
	"sort"

	"github.com/lucasjlepore/igc-route/geodesy"
	"github.com/lucasjlepore/igc-route/igc"
)

const (
	// maxSamples bounds how many fixes the candidate scan looks at.
	maxSamples = 200

	// minSpacingKm drops near-duplicate sampled points from the scan.
	minSpacingKm = 0.1

	// altitudeStepM is the per-side altitude delta an excursion must exceed.
	altitudeStepM = 100

	NameTakeoff = "TAKEOFF"
	NameLanding = "LANDING"
)

// Waypoint is one point of the simplified route.
type Waypoint struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Altitude int     `json:"altitude"`
	Time     string  `json:"time"`
}

// CandidateKind tells why a fix was considered significant.
type CandidateKind string

const (
	KindTurn     CandidateKind = "turn"
	KindAltitude CandidateKind = "altitude"
)

// Selection is the result of one waypoint generation run.
type Selection struct {
	Level          Level      `json:"level"`
	DistanceKm     float64    `json:"distance_km"`
	TargetCount    int        `json:"target_count"`
	CandidateCount int        `json:"candidate_count"`
	Waypoints      []Waypoint `json:"waypoints"`
}

type sample struct {
	index int // position in the full fix sequence
	fix   igc.Fix
}

type candidate struct {
	sample
	importance float64
	kind       CandidateKind
}

// Select reduces fixes to at most MaxWaypoints path-ordered waypoints,
// always starting with TAKEOFF and ending with LANDING when any fix exists.
func Select(fixes []igc.Fix, level Level) Selection {
	if _, ok := paramsByLevel[level]; !ok {
		level = DefaultLevel
	}
	sel := Selection{Level: level}
	if len(fixes) == 0 {
		sel.Waypoints = []Waypoint{}
		return sel
	}

	first, last := fixes[0], fixes[len(fixes)-1]
	sel.DistanceKm = trackDistanceKm(fixes)
	sel.TargetCount = TargetCount(sel.DistanceKm, level)

	wps := make([]Waypoint, 0, sel.TargetCount+2)
	wps = append(wps, waypointFromFix(NameTakeoff, first))
	if sel.TargetCount <= 0 {
		sel.Waypoints = append(wps, waypointFromFix(NameLanding, last))
		return sel
	}

	candidates := scanCandidates(downsample(fixes), level.TurnThreshold())
	sel.CandidateCount = len(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].importance > candidates[j].importance
	})
	if len(candidates) > sel.TargetCount {
		candidates = candidates[:sel.TargetCount]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].index < candidates[j].index
	})

	for _, c := range candidates {
		prefix := "WP"
		if c.kind == KindTurn {
			prefix = "TURN"
		}
		wps = append(wps, waypointFromFix(fmt.Sprintf("%s%d", prefix, len(wps)), c.fix))
	}
	sel.Waypoints = append(wps, waypointFromFix(NameLanding, last))
	return sel
}

func trackDistanceKm(fixes []igc.Fix) float64 {
	total := 0.0
	for i := 1; i < len(fixes); i++ {
		total += fixDistanceKm(fixes[i-1], fixes[i])
	}
	return total
}

// downsample keeps every stride-th fix so long logs cost at most ~maxSamples
// scoring steps. The last fix is always kept.
func downsample(fixes []igc.Fix) []sample {
	stride := max(1, len(fixes)/maxSamples)
	out := make([]sample, 0, len(fixes)/stride+1)
	for i := 0; i < len(fixes); i += stride {
		out = append(out, sample{index: i, fix: fixes[i]})
	}
	if lastIdx := len(fixes) - 1; out[len(out)-1].index != lastIdx {
		out = append(out, sample{index: lastIdx, fix: fixes[lastIdx]})
	}
	return out
}

// scanCandidates scores every interior sample against its sampled
// neighbours. One fix may yield both a turn and an altitude candidate.
func scanCandidates(samples []sample, turnThreshold float64) []candidate {
	var out []candidate
	for i := 1; i < len(samples)-1; i++ {
		prev, cur, next := samples[i-1].fix, samples[i].fix, samples[i+1].fix
		if fixDistanceKm(prev, cur) < minSpacingKm {
			continue
		}

		change := geodesy.CourseChangeDeg(
			prev.Latitude, prev.Longitude,
			cur.Latitude, cur.Longitude,
			next.Latitude, next.Longitude,
		)
		if change > turnThreshold {
			out = append(out, candidate{sample: samples[i], importance: change * 2, kind: KindTurn})
		}

		up := math.Abs(float64(cur.PressureAltitude - prev.PressureAltitude))
		down := math.Abs(float64(next.PressureAltitude - cur.PressureAltitude))
		if up > altitudeStepM && down > altitudeStepM {
			out = append(out, candidate{sample: samples[i], importance: (up + down) / 50, kind: KindAltitude})
		}
	}
	return out
}

func fixDistanceKm(a, b igc.Fix) float64 {
	return geodesy.DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func waypointFromFix(name string, f igc.Fix) Waypoint {
	return Waypoint{
		Name:     name,
		Lat:      f.Latitude,
		Lng:      f.Longitude,
		Altitude: f.PressureAltitude,
		Time:     f.Time,
	}
}
