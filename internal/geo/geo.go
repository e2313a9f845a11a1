// Package geo provides pure great-circle helpers for annotating
// assignments with distances and travel estimates.
package geo

import (
	"math"
)

const (
	earthRadiusKm = 6371

	// averageSpeedKmh is the assumed urban travel speed for ETA estimates.
	averageSpeedKmh = 30

	// defaultETAMinutes is returned when the distance is unknown.
	defaultETAMinutes = 30
)

// Distance returns the haversine distance in kilometers between two
// coordinate pairs, rounded to 2 decimal places. It returns nil when
// either pair is absent; callers must treat nil as "unknown", never as
// zero.
func Distance(lat1, lon1, lat2, lon2 *float64) *float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return nil
	}

	dLat := deg2rad(*lat2 - *lat1)
	dLon := deg2rad(*lon2 - *lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(*lat1))*math.Cos(deg2rad(*lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	d := math.Round(earthRadiusKm*c*100) / 100
	return &d
}

// EstimatedMinutes converts a distance into a travel-time estimate in
// minutes, falling back to a fixed default when the distance is unknown
// or non-positive.
func EstimatedMinutes(distanceKm *float64) int {
	if distanceKm == nil || *distanceKm <= 0 {
		return defaultETAMinutes
	}
	return int(math.Round(*distanceKm / averageSpeedKmh * 60))
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
