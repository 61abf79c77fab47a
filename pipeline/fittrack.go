package pipeline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/tormoder/fit"

	"github.com/lucasjlepore/igc-route/geodesy"
	"github.com/lucasjlepore/igc-route/igc"
)

// FIT altitude fields are uint16 with scale 5 and offset 500.
const (
	fitAltitudeScale  = 5
	fitAltitudeOffset = 500
	fitAltitudeMax    = 0xFFFE // 0xFFFF is the invalid sentinel
)

// marshalTrackFIT encodes fixes as a FIT activity so flight and training
// apps can import the track. day anchors B-record times of day.
func marshalTrackFIT(fixes []igc.Fix, day time.Time) ([]byte, error) {
	if len(fixes) == 0 {
		return nil, fmt.Errorf("no fixes to encode")
	}

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		return nil, fmt.Errorf("new fit file: %w", err)
	}
	activity, err := file.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity accessor: %w", err)
	}

	times := fixTimes(fixes, day)
	start, end := times[0], times[len(times)-1]
	file.FileId.TimeCreated = start

	begin := fit.NewEventMsg()
	begin.Timestamp = start
	begin.Event = fit.EventTimer
	begin.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, begin)

	distanceM := 0.0
	var ascent, descent int
	for i, f := range fixes {
		if i > 0 {
			prev := fixes[i-1]
			distanceM += geodesy.DistanceKm(prev.Latitude, prev.Longitude, f.Latitude, f.Longitude) * 1000
			if d := f.PressureAltitude - prev.PressureAltitude; d > 0 {
				ascent += d
			} else {
				descent -= d
			}
		}
		rec := fit.NewRecordMsg()
		rec.Timestamp = times[i]
		rec.PositionLat = fit.NewLatitudeDegrees(f.Latitude)
		rec.PositionLong = fit.NewLongitudeDegrees(f.Longitude)
		rec.Altitude = encodeFITAltitude(f.PressureAltitude)
		rec.Distance = uint32(distanceM * 100)
		activity.Records = append(activity.Records, rec)
	}

	stop := fit.NewEventMsg()
	stop.Timestamp = end
	stop.Event = fit.EventTimer
	stop.EventType = fit.EventTypeStopAll
	activity.Events = append(activity.Events, stop)

	elapsedMs := uint32(end.Sub(start) / time.Millisecond)
	session := fit.NewSessionMsg()
	session.Timestamp = end
	session.StartTime = start
	session.Sport = fit.SportFlying
	session.TotalElapsedTime = elapsedMs
	session.TotalTimerTime = elapsedMs
	session.TotalDistance = uint32(distanceM * 100)
	session.TotalAscent = clampUint16(ascent)
	session.TotalDescent = clampUint16(descent)
	session.StartPositionLat = fit.NewLatitudeDegrees(fixes[0].Latitude)
	session.StartPositionLong = fit.NewLongitudeDegrees(fixes[0].Longitude)
	activity.Sessions = append(activity.Sessions, session)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode fit: %w", err)
	}
	return buf.Bytes(), nil
}

// fixTimes turns times of day into absolute UTC times, rolling the day
// forward on every midnight crossing.
func fixTimes(fixes []igc.Fix, day time.Time) []time.Time {
	out := make([]time.Time, len(fixes))
	elapsed := 0
	for i, f := range fixes {
		if i > 0 {
			elapsed += clockDelta(fixes[i-1].TimestampSeconds, f.TimestampSeconds)
		}
		out[i] = day.Add(time.Duration(fixes[0].TimestampSeconds+elapsed) * time.Second).UTC()
	}
	return out
}

func encodeFITAltitude(meters int) uint16 {
	v := (meters + fitAltitudeOffset) * fitAltitudeScale
	switch {
	case v < 0:
		return 0
	case v > fitAltitudeMax:
		return fitAltitudeMax
	}
	return uint16(v)
}

func clampUint16(v int) uint16 {
	if v > 0xFFFE {
		return 0xFFFE
	}
	if v < 0 {
		return 0
	}
	return uint16(v)
}
