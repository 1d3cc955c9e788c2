package geo

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the Haversine great-circle distance between two
// coordinate pairs in kilometers. The function is total: out-of-range
// inputs yield a mathematically defined but meaningless result, which is
// acceptable for a scoring signal.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
