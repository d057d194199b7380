package georadius

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const (
	// earthRadius is the mean Earth radius (kilometers), same value web map tooling uses
	earthRadius = 6371.0088
	pi180       = math.Pi / 180.0
	pi180Rev    = 180.0 / math.Pi
)

// GeoPoint representation of point on Earth
type GeoPoint struct {
	Lat float64
	Lon float64
}

// String returns pretty printed value for for GeoPoint
func (gp GeoPoint) String() string {
	return fmt.Sprintf("Lon: %f | Lat: %f", gp.Lon, gp.Lat)
}

// Point returns GeoPoint as orb.Point (lon, lat order)
func (gp GeoPoint) Point() orb.Point {
	return orb.Point{gp.Lon, gp.Lat}
}

// geoPointFromOrb converts orb.Point (lon, lat order) to GeoPoint
func geoPointFromOrb(pt orb.Point) GeoPoint {
	return GeoPoint{Lon: pt.Lon(), Lat: pt.Lat()}
}

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansTodegrees r = deg  * 180 / pi
func radiansTodegrees(d float64) float64 {
	return d * pi180Rev
}

// greatCircleDistance returns distance between two geo-points (kilometers)
func greatCircleDistance(p, q GeoPoint) float64 {
	lat1 := degreesToRadians(p.Lat)
	lon1 := degreesToRadians(p.Lon)
	lat2 := degreesToRadians(q.Lat)
	lon2 := degreesToRadians(q.Lon)
	diffLat := lat2 - lat1
	diffLon := lon2 - lon1
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	ans := c * earthRadius
	return ans
}

// destinationPoint returns the point reached from p after travelling distance (kilometers) along initial bearing (degrees, clockwise from north)
func destinationPoint(p GeoPoint, bearing, distance float64) GeoPoint {
	lat1 := degreesToRadians(p.Lat)
	lon1 := degreesToRadians(p.Lon)
	theta := degreesToRadians(bearing)
	delta := distance / earthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*math.Sin(delta)*math.Cos(lat1), math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))
	return GeoPoint{
		Lat: radiansTodegrees(lat2),
		Lon: normalizeLongitude(radiansTodegrees(lon2)),
	}
}

// normalizeLongitude wraps longitude into [-180; 180]
func normalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	return math.Mod(lon+540, 360) - 180
}

// circlePolygon returns polygonal approximation of circle with given center and radius (kilometers).
// Ring goes counter-clockwise starting from the north point and is closed
func circlePolygon(center GeoPoint, radius float64, segments int) orb.Polygon {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		bearing := float64(i) * -360.0 / float64(segments)
		ring = append(ring, destinationPoint(center, bearing, radius).Point())
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}
