package georadius

import (
	"github.com/paulmach/orb"
)

// square returns closed axis-aligned square polygon around (lon, lat) with given half size (degrees)
func square(lon, lat, half float64) orb.Polygon {
	return orb.Polygon{{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
		{lon - half, lat - half},
	}}
}

func hub(code string, geom orb.Geometry, attrs map[string]interface{}) *Feature {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	return &Feature{
		Kind:       KindHub,
		Code:       code,
		HubCode:    code,
		Name:       "Polo " + code,
		Region:     "SP",
		Geometry:   geom,
		Attributes: attrs,
	}
}

func periphery(code, hubCode string, geom orb.Geometry, attrs map[string]interface{}) *Feature {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	return &Feature{
		Kind:       KindPeriphery,
		Code:       code,
		HubCode:    hubCode,
		Name:       "Periferia " + code,
		Region:     "SP",
		Geometry:   geom,
		Attributes: attrs,
	}
}

func ptr(pt orb.Point) *orb.Point {
	return &pt
}

var saoPaulo = orb.Point{-46.633, -23.550}
