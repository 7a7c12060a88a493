package geo

import (
	"math"
	"time"
)

const earthRadiusM = 6371000

// Point is a coordinate with an optional capture time.
type Point struct {
	Lat float64
	Lng float64
	At  time.Time
}

// DistanceMeters returns the haversine great-circle distance between two
// coordinates in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLng := lng2Rad - lng1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// SpeedMps returns the speed in m/s implied by moving from p1 to p2.
// Non-positive time deltas yield 0.
func SpeedMps(p1, p2 Point) float64 {
	dt := p2.At.Sub(p1.At).Seconds()
	if dt <= 0 {
		return 0
	}
	return DistanceMeters(p1.Lat, p1.Lng, p2.Lat, p2.Lng) / dt
}

// Heading returns the initial bearing from the first coordinate to the
// second, in degrees clockwise from north, normalized to [0, 360).
// Identical coordinates yield 0.
func Heading(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	y := math.Sin(lng2Rad-lng1Rad) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(lng2Rad-lng1Rad)

	heading := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(heading+360, 360)
}
