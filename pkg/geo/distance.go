package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

const (
	earthRadiusKM = 6371.0
	earthRadiusM  = 6371007
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func radiansToDegree(angle float64) float64 {
	return angle * (180.0 / math.Pi)
}

// CalculateHaversineDistance returns the great circle distance in km.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = degreeToRadians(latOne)
	longOne = degreeToRadians(longOne)
	latTwo = degreeToRadians(latTwo)
	longTwo = degreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// HaversineMeters is CalculateHaversineDistance for coordinates, in meter.
func HaversineMeters(a, b datastructure.Coordinate) float64 {
	return CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) * 1000
}

// GetDestinationPoint moves dist km from (lat, lon) along bearing (degree).
func GetDestinationPoint(lat, lon, bearing, dist float64) (float64, float64) {
	latRad := degreeToRadians(lat)
	lonRad := degreeToRadians(lon)
	brng := degreeToRadians(bearing)
	angular := dist / earthRadiusKM

	destLat := math.Asin(math.Sin(latRad)*math.Cos(angular) +
		math.Cos(latRad)*math.Sin(angular)*math.Cos(brng))
	destLon := lonRad + math.Atan2(math.Sin(brng)*math.Sin(angular)*math.Cos(latRad),
		math.Cos(angular)-math.Sin(latRad)*math.Sin(destLat))

	return radiansToDegree(destLat), radiansToDegree(destLon)
}

// BoundingBox returns the (min, max) corners of the square of half-size
// radius meters around c.
func BoundingBox(c datastructure.Coordinate, radius float64) (datastructure.Coordinate, datastructure.Coordinate) {
	km := radius / 1000
	north, _ := GetDestinationPoint(c.Lat, c.Lon, 0, km)
	south, _ := GetDestinationPoint(c.Lat, c.Lon, 180, km)
	_, east := GetDestinationPoint(c.Lat, c.Lon, 90, km)
	_, west := GetDestinationPoint(c.Lat, c.Lon, 270, km)
	return datastructure.NewCoordinate(south, west), datastructure.NewCoordinate(north, east)
}
