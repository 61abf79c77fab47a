// Package route reduces a flight's fixes to a short, path-ordered list of
// navigationally significant waypoints and serializes it for export.
package route

import (
	"fmt"
	"math"
	"strings"
)

// Level trades waypoint density against route fidelity.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"

	DefaultLevel = LevelMedium
)

// MaxWaypoints bounds every selection, TAKEOFF and LANDING included.
const MaxWaypoints = 15

const maxInterior = MaxWaypoints - 2

type levelParams struct {
	kmPerWaypoint float64
	baseCap       int
	turnThreshold float64 // degrees
}

var paramsByLevel = map[Level]levelParams{
	LevelLow:    {kmPerWaypoint: 15, baseCap: 12, turnThreshold: 30},
	LevelMedium: {kmPerWaypoint: 25, baseCap: 8, turnThreshold: 45},
	LevelHigh:   {kmPerWaypoint: 40, baseCap: 5, turnThreshold: 60},
}

// ParseLevel accepts low, medium or high in any case. An empty string
// selects DefaultLevel.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLevel, nil
	}
	l := Level(s)
	if _, ok := paramsByLevel[l]; !ok {
		return "", fmt.Errorf("unsupported detail level %q (expected low|medium|high)", s)
	}
	return l, nil
}

func (l Level) String() string {
	return string(l)
}

func (l Level) params() levelParams {
	if p, ok := paramsByLevel[l]; ok {
		return p
	}
	return paramsByLevel[DefaultLevel]
}

// TurnThreshold is the course change, in degrees, a point must exceed to
// count as a turn at this level.
func (l Level) TurnThreshold() float64 {
	return l.params().turnThreshold
}

// TargetCount is the number of interior waypoints budgeted for a flight of
// distanceKm at the given level. It never exceeds MaxWaypoints-2.
func TargetCount(distanceKm float64, level Level) int {
	p := level.params()
	base := min(p.baseCap, int(math.Ceil(distanceKm/p.kmPerWaypoint)))

	var v int
	switch {
	case distanceKm <= 20:
		v = max(2, base)
	case distanceKm <= 100:
		v = max(3, min(maxInterior, base+1))
	case distanceKm <= 300:
		v = max(4, min(maxInterior, base+2))
	default:
		v = max(5, min(maxInterior, base+3))
	}
	return min(maxInterior, v)
}
