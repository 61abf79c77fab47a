package igcroute

import (
	"fmt"
	"strings"

	"github.com/lucasjlepore/igc-route/igc"
)

// BuildFlightNotes turns an analysis into a readable flight summary.
func BuildFlightNotes(a *Analysis) string {
	if a == nil {
		return ""
	}

	var b strings.Builder
	h := a.Header

	fmt.Fprintf(&b, "Flight: %s | Pilot %s\n", h.Date, h.Pilot)
	fmt.Fprintf(&b, "Glider %s (%s) | Competition ID %s\n", h.GliderType, h.GliderID, h.CompetitionID)
	fmt.Fprintf(&b, "Logger %s %s | Firmware %s | Datum %s\n", h.LoggerType, h.LoggerID, h.FirmwareVersion, h.GPSDatum)

	s := a.Stats
	if s.FixCount == 0 {
		b.WriteString("\nNo position fixes were decoded from this log.\n")
		if a.MalformedRecords > 0 {
			fmt.Fprintf(&b, "- %d malformed B records were skipped.\n", a.MalformedRecords)
		}
		return strings.TrimSpace(b.String())
	}

	fmt.Fprintf(
		&b,
		"Time %s-%s | Duration %s | Distance %.1f km | Avg speed %.1f km/h\n",
		s.StartTime,
		s.EndTime,
		formatDuration(s.DurationSeconds),
		s.DistanceKm,
		s.AverageSpeedKmh,
	)
	fmt.Fprintf(
		&b,
		"Altitude takeoff %d m / landing %d m | min %d / max %d m (GNSS max %d m)\n",
		s.TakeoffAltitude,
		s.LandingAltitude,
		s.MinAltitude,
		s.MaxAltitude,
		s.MaxGNSSAltitude,
	)
	fmt.Fprintf(&b, "Climb max %.1f m/min | Sink max %.1f m/min\n", s.MaxClimbRate, s.MaxSinkRate)
	fmt.Fprintf(&b, "Fixes %d (%d valid)", s.FixCount, s.ValidFixCount)
	if a.MalformedRecords > 0 {
		fmt.Fprintf(&b, " | %d malformed B records skipped", a.MalformedRecords)
	}
	b.WriteByte('\n')

	fmt.Fprintf(
		&b,
		"\nRoute (%s detail, %d of %d candidate points kept)\n",
		a.Level,
		len(a.Waypoints),
		a.CandidateCount,
	)
	for _, leg := range a.Structure.Legs {
		fmt.Fprintf(
			&b,
			"- %s -> %s: %.1f km %s (%03.0f deg), %+d m, %s\n",
			leg.From,
			leg.To,
			leg.DistanceKm,
			compassPoint(leg.BearingDeg),
			leg.BearingDeg,
			leg.AltitudeChangeM,
			formatDuration(leg.DurationSeconds),
		)
	}
	if a.Structure.LongestLegIndex > 0 {
		fmt.Fprintf(&b, "Longest leg: #%d at %.1f km of %.1f km routed\n",
			a.Structure.LongestLegIndex, a.Structure.LongestLegKm, a.Structure.TotalKm)
	}

	b.WriteString("\nObservations\n- ")
	b.WriteString(climbAssessment(s))
	b.WriteString("\n- ")
	b.WriteString(headerAssessment(h))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

func climbAssessment(s FlightStats) string {
	gain := s.MaxAltitude - s.TakeoffAltitude
	switch {
	case gain <= 50:
		return "Little height was gained above takeoff; this looks like a sled run or a ground-handling log."
	case s.MaxClimbRate >= 180:
		return fmt.Sprintf("Strong climbs up to %.1f m/min carried the flight %d m above takeoff.", s.MaxClimbRate, gain)
	default:
		return fmt.Sprintf("Moderate climbs took the flight %d m above takeoff.", gain)
	}
}

func headerAssessment(h igc.FlightHeader) string {
	var missing []string
	if h.Date == igc.Unknown {
		missing = append(missing, "date")
	}
	if h.Pilot == igc.Unknown {
		missing = append(missing, "pilot")
	}
	if h.GliderType == igc.Unknown {
		missing = append(missing, "glider type")
	}
	if len(missing) == 0 {
		return "Header carries date, pilot and glider identification."
	}
	return "Header is missing: " + strings.Join(missing, ", ") + "."
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
