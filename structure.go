package igcroute

import (
	"github.com/lucasjlepore/igc-route/geodesy"
	"github.com/lucasjlepore/igc-route/route"
)

// RouteStructure describes the legs between consecutive route waypoints.
type RouteStructure struct {
	Legs            []RouteLeg `json:"legs,omitempty"`
	TotalKm         float64    `json:"total_km"`
	LongestLegIndex int        `json:"longest_leg_index"`
	LongestLegKm    float64    `json:"longest_leg_km"`
}

// RouteLeg is one straight segment of the simplified route.
type RouteLeg struct {
	Index           int     `json:"index"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	DistanceKm      float64 `json:"distance_km"`
	BearingDeg      float64 `json:"bearing_deg"`
	AltitudeChangeM int     `json:"altitude_change_m"`
	DurationSeconds int     `json:"duration_seconds"`
}

// BuildRouteStructure converts a waypoint list into legs. Fewer than two
// waypoints yield an empty structure with LongestLegIndex -1.
func BuildRouteStructure(wps []route.Waypoint) RouteStructure {
	rs := RouteStructure{LongestLegIndex: -1}
	if len(wps) < 2 {
		return rs
	}

	rs.Legs = make([]RouteLeg, 0, len(wps)-1)
	for i := 1; i < len(wps); i++ {
		from, to := wps[i-1], wps[i]
		leg := RouteLeg{
			Index:           i,
			From:            from.Name,
			To:              to.Name,
			DistanceKm:      geodesy.DistanceKm(from.Lat, from.Lng, to.Lat, to.Lng),
			BearingDeg:      geodesy.BearingDeg(from.Lat, from.Lng, to.Lat, to.Lng),
			AltitudeChangeM: to.Altitude - from.Altitude,
		}
		if a, okA := clockSeconds(from.Time); okA {
			if b, okB := clockSeconds(to.Time); okB {
				leg.DurationSeconds = elapsedSeconds(a, b)
			}
		}
		rs.TotalKm += leg.DistanceKm
		if leg.DistanceKm > rs.LongestLegKm || rs.LongestLegIndex < 0 {
			rs.LongestLegKm = leg.DistanceKm
			rs.LongestLegIndex = leg.Index
		}
		rs.Legs = append(rs.Legs, leg)
	}
	return rs
}

// clockSeconds parses HH:MM:SS.
func clockSeconds(s string) (int, bool) {
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return 0, false
	}
	total := 0
	for _, part := range []string{s[0:2], s[3:5], s[6:8]} {
		if part[0] < '0' || part[0] > '9' || part[1] < '0' || part[1] > '9' {
			return 0, false
		}
		total = total*60 + int(part[0]-'0')*10 + int(part[1]-'0')
	}
	return total, true
}

// compassPoint maps a bearing to one of 8 compass directions.
func compassPoint(bearing float64) string {
	points := [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	idx := int((bearing+22.5)/45) % len(points)
	return points[idx]
}
