package station

import "math"

// EarthRadiusKm is the mean Earth radius used for all distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance in kilometers:
// a = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2), d = 2·R·asin(√a).
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	sinLat := math.Sin(toRadians(lat2-lat1) / 2)
	sinLon := math.Sin(toRadians(lon2-lon1) / 2)
	a := sinLat*sinLat +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*sinLon*sinLon
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
