package igcroute

import (
	"github.com/lucasjlepore/igc-route/geodesy"
	"github.com/lucasjlepore/igc-route/igc"
)

const secondsPerDay = 86400

// FlightStats summarises a fix sequence. The zero value describes an empty
// flight.
type FlightStats struct {
	DurationSeconds int     `json:"duration_seconds"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	MaxAltitude     int     `json:"max_altitude"`
	MinAltitude     int     `json:"min_altitude"`
	TakeoffAltitude int     `json:"takeoff_altitude"`
	LandingAltitude int     `json:"landing_altitude"`
	MaxClimbRate    float64 `json:"max_climb_rate"` // m/min
	MaxSinkRate     float64 `json:"max_sink_rate"`  // m/min, positive magnitude
	DistanceKm      float64 `json:"distance_km"`
	FixCount        int     `json:"fix_count"`
	ValidFixCount   int     `json:"valid_fix_count"`
	AverageSpeedKmh float64 `json:"average_speed_kmh"`
	MaxGNSSAltitude int     `json:"max_gnss_altitude"`
}

// ComputeStats derives flight statistics from fixes in file order.
//
// Duration tolerates a single midnight crossing; flights spanning more than
// 24 hours are not representable by B-record times alone.
func ComputeStats(fixes []igc.Fix) FlightStats {
	if len(fixes) == 0 {
		return FlightStats{}
	}
	first, last := fixes[0], fixes[len(fixes)-1]

	s := FlightStats{
		StartTime:       first.Time,
		EndTime:         last.Time,
		MaxAltitude:     first.PressureAltitude,
		MinAltitude:     first.PressureAltitude,
		TakeoffAltitude: first.PressureAltitude,
		LandingAltitude: last.PressureAltitude,
		MaxGNSSAltitude: first.GNSSAltitude,
		FixCount:        len(fixes),
	}
	s.DurationSeconds = elapsedSeconds(first.TimestampSeconds, last.TimestampSeconds)

	for i, f := range fixes {
		if f.Valid {
			s.ValidFixCount++
		}
		s.MaxAltitude = max(s.MaxAltitude, f.PressureAltitude)
		s.MinAltitude = min(s.MinAltitude, f.PressureAltitude)
		s.MaxGNSSAltitude = max(s.MaxGNSSAltitude, f.GNSSAltitude)
		if i == 0 {
			continue
		}

		prev := fixes[i-1]
		s.DistanceKm += geodesy.DistanceKm(prev.Latitude, prev.Longitude, f.Latitude, f.Longitude)

		dt := f.TimestampSeconds - prev.TimestampSeconds
		if dt <= 0 {
			continue
		}
		rate := float64(f.PressureAltitude-prev.PressureAltitude) / float64(dt) * 60
		if rate > s.MaxClimbRate {
			s.MaxClimbRate = rate
		}
		if -rate > s.MaxSinkRate {
			s.MaxSinkRate = -rate
		}
	}

	if s.DurationSeconds > 0 {
		s.AverageSpeedKmh = s.DistanceKm / (float64(s.DurationSeconds) / 3600)
	}
	return s
}

// elapsedSeconds returns end-start, adding one day when the clock wrapped.
func elapsedSeconds(start, end int) int {
	d := end - start
	if d < 0 {
		d += secondsPerDay
	}
	return d
}
