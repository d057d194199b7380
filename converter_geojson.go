package georadius

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// PrepareGeoJSONPolygon returns GeoJSON representation of Polygon
func PrepareGeoJSONPolygon(poly orb.Polygon) (string, error) {
	b, err := geojson.NewPolygonGeometry(polygonCoordinates(poly)).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to geojson format")
	}
	return string(b), nil
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt orb.Point) (string, error) {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon(), pt.Lat()}).MarshalJSON()
	if err != nil {
		return "", errors.Wrap(err, "Can't convert geometry to geojson format")
	}
	return string(b), nil
}

// ResultToFeatureCollection returns circle and matched municipalities as GeoJSON features.
// Circle feature goes first, municipalities follow in result order. Result without export geometry gives circle-less collection of properties only
func ResultToFeatureCollection(result AggregationResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if result.Export != nil && len(result.Export.Circle) > 0 {
		circle := geojson.NewFeature(geojson.NewPolygonGeometry(polygonCoordinates(result.Export.Circle)))
		circle.SetProperty("kind", "radius")
		circle.SetProperty("selection_id", result.Metadata.SelectionID)
		circle.SetProperty("radius_km", result.Metadata.RadiusKm)
		circle.SetProperty("center", []float64{result.Metadata.Center.Lon(), result.Metadata.Center.Lat()})
		circle.SetProperty("criterion", result.Metadata.Criterion)
		circle.SetProperty("total", result.Subtotals.Total)
		fc.AddFeature(circle)
	}
	var hubs, peripheries map[string]*Feature
	if result.Export != nil {
		hubs = indexByCode(result.Export.Hubs)
		peripheries = indexByCode(result.Export.Peripheries)
	}
	for _, m := range result.Combined {
		var geom *geojson.Geometry
		if m.Kind == KindPeriphery {
			if f, ok := peripheries[m.DestinationCode]; ok {
				geom = geometryToGeoJSON(f.Geometry)
			}
		} else {
			if f, ok := hubs[m.OriginCode]; ok {
				geom = geometryToGeoJSON(f.Geometry)
			}
		}
		feature := geojson.NewFeature(geom)
		feature.SetProperty("kind", m.Kind.String())
		feature.SetProperty("origin_code", m.OriginCode)
		if m.DestinationCode != "" {
			feature.SetProperty("destination_code", m.DestinationCode)
		}
		feature.SetProperty("name", m.Name)
		feature.SetProperty("region", m.Region)
		feature.SetProperty("value", m.Value)
		products := make(map[string]float64, len(m.ProductBreakdown))
		for k, v := range m.ProductBreakdown {
			products[string(k)] = v
		}
		feature.SetProperty("products", products)
		fc.AddFeature(feature)
	}
	return fc
}

// geometryToGeoJSON converts areal orb geometry. Other types give nil
func geometryToGeoJSON(g orb.Geometry) *geojson.Geometry {
	switch geom := g.(type) {
	case orb.Polygon:
		return geojson.NewPolygonGeometry(polygonCoordinates(geom))
	case orb.MultiPolygon:
		coords := make([][][][]float64, len(geom))
		for i := range geom {
			coords[i] = polygonCoordinates(geom[i])
		}
		return geojson.NewMultiPolygonGeometry(coords...)
	}
	return nil
}

func polygonCoordinates(poly orb.Polygon) [][][]float64 {
	rings := make([][][]float64, len(poly))
	for i, ring := range poly {
		pts := make([][]float64, len(ring))
		for j := range ring {
			pts[j] = []float64{ring[j].Lon(), ring[j].Lat()}
		}
		rings[i] = pts
	}
	return rings
}
