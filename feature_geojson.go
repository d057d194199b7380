package georadius

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/LdDl/georadius/internal/logging"
)

const (
	propHubCode       = "codigo_origem"
	propHubName       = "municipio_origem"
	propPeripheryCode = "codigo_destino"
	propPeripheryName = "municipio_destino"
	propRegion        = "UF"
	propRegionOrigin  = "UF_origem"
	propProductValues = "productValues"
	propFallbackGeom  = "geom"
)

// LoadFeatureFile reads GeoJSON FeatureCollection file and converts its features to given kind
func LoadFeatureFile(fname string, kind FeatureKind, log logging.Logger) ([]*Feature, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read file '%s'", fname)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't parse GeoJSON '%s'", fname)
	}
	return FeaturesFromCollection(kind, fc, log), nil
}

// FeaturesFromCollection converts GeoJSON features to hub or periphery features.
// Features with invalid geometry are kept with nil geometry
func FeaturesFromCollection(kind FeatureKind, fc *geojson.FeatureCollection, log logging.Logger) []*Feature {
	if log == nil {
		log = logging.NewNop()
	}
	if fc == nil {
		return nil
	}
	features := make([]*Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		if gf == nil {
			continue
		}
		f := featureFromGeoJSON(kind, gf)
		if err := ValidateGeometry(f.Geometry); err != nil {
			if f.Geometry != nil {
				log.Debug("geometry dropped", logging.String("kind", kind.String()), logging.String("code", f.Code), logging.Int("index", i), logging.Err(err))
			}
			f.Geometry = nil
		}
		features = append(features, f)
	}
	return features
}

func featureFromGeoJSON(kind FeatureKind, gf *geojson.Feature) *Feature {
	attrs := map[string]interface{}(gf.Properties)
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	f := &Feature{
		Kind:       kind,
		Geometry:   gf.Geometry,
		Attributes: attrs,
		Products:   productValuesAttr(attrs[propProductValues]),
	}
	if f.Geometry == nil {
		f.Geometry = fallbackGeometry(attrs[propFallbackGeom])
	}
	switch kind {
	case KindHub:
		f.Code = stringAttr(attrs, propHubCode)
		f.HubCode = f.Code
		f.Name = stringAttr(attrs, propHubName)
		f.Region = stringAttr(attrs, propRegion, propRegionOrigin)
	case KindPeriphery:
		f.Code = stringAttr(attrs, propPeripheryCode)
		f.HubCode = stringAttr(attrs, propHubCode)
		f.Name = stringAttr(attrs, propPeripheryName)
		f.Region = stringAttr(attrs, propRegion)
	}
	return f
}

// fallbackGeometry extracts geometry stored in properties: GeoJSON object, GeoJSON text or WKT text
func fallbackGeometry(raw interface{}) orb.Geometry {
	switch v := raw.(type) {
	case map[string]interface{}:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return unmarshalGeometry(data)
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "{") {
			return unmarshalGeometry([]byte(s))
		}
		geom, err := wkt.Unmarshal(s)
		if err != nil {
			return nil
		}
		return geom
	}
	return nil
}

func unmarshalGeometry(data []byte) orb.Geometry {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil || g == nil {
		return nil
	}
	return g.Geometry()
}

// productValuesAttr converts pre-computed product map. Non-object values mean "absent"
func productValuesAttr(raw interface{}) map[ProductKey]float64 {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[ProductKey]float64, len(m))
	for k, v := range m {
		out[ProductKey(k)] = ParseValue(v)
	}
	return out
}
