// Package geodesy holds the spherical-earth primitives used to measure and
// score a flight track.
package geodesy

import "math"

// EarthRadiusKm is the mean earth radius used by every distance computation.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance between two points
// given in decimal degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	a := sLat*sLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sLon*sLon
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// BearingDeg returns the initial bearing from point 1 to point 2 in [0, 360).
func BearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dLon := radians(lon2 - lon1)
	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)
	deg := math.Mod(degrees(math.Atan2(y, x))+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// CourseChangeDeg measures how sharply the path 1→2→3 turns at point 2.
// Left and right turns score the same; the result lies in [0, 180].
func CourseChangeDeg(lat1, lon1, lat2, lon2, lat3, lon3 float64) float64 {
	in := BearingDeg(lat1, lon1, lat2, lon2)
	out := BearingDeg(lat2, lon2, lat3, lon3)
	diff := math.Abs(in - out)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
