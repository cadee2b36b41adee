package geo

import "math"

// earthRadiusMeters is the WGS-84 mean earth radius.
const earthRadiusMeters = 6371000.0

// Point is a WGS-84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the great-circle distance between two points in meters,
// computed with the haversine formula. Degenerate inputs (NaN coordinates)
// propagate NaN; validation is the caller's concern.
func Distance(a, b Point) float64 {
	latA := toRadians(a.Latitude)
	latB := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)

	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
