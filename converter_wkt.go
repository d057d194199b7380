package georadius

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// PrepareWKTPolygon returns WKT representation of Polygon
func PrepareWKTPolygon(poly orb.Polygon) string {
	return wkt.MarshalString(poly)
}

// PrepareWKTPoint returns WKT representation of Point
func PrepareWKTPoint(pt orb.Point) string {
	return fmt.Sprintf("POINT(%f %f)", pt.Lon(), pt.Lat())
}
