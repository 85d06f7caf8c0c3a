package domain

import "math"

const earthRadiusKm = 6371.0

// Immutable geographic coordinates (WGS84).
type Coordinates struct {
	Lat float64
	Lng float64
}

// Return coordinates as [lng, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }

// Travel distance and duration between two coordinates.
type DistanceResult struct {
	Kilometers      float64
	DurationMinutes float64
}

// HaversineKm returns the great-circle distance in kilometers between two points.
func HaversineKm(latA, lngA, latB, lngB float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(latB - latA)
	dLng := toRad(lngB - lngA)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(latA))*math.Cos(toRad(latB))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
