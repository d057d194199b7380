package georadius

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/pkg/errors"
)

const (
	// DEFAULT_CIRCLE_SEGMENTS is number of vertices in circle approximation
	DEFAULT_CIRCLE_SEGMENTS = 128
)

var (
	// ErrInvalidGeometry is returned for geometries which can't take part in spatial queries
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// Kernel is the set of geometry primitives the radius selection depends on
type Kernel interface {
	// Distance returns great-circle distance between two lon/lat points (kilometers)
	Distance(a, b orb.Point) float64
	// Circle returns polygon approximating circle of radius (kilometers) around center
	Circle(center orb.Point, radiusKm float64, segments int) orb.Polygon
	// Intersects reports whether two areal geometries share at least one point
	Intersects(a, b orb.Geometry) (bool, error)
}

// SphericalKernel is default Kernel. Distances and circles are computed on sphere,
// predicates are evaluated on lon/lat plane (as web map tooling does) by simplefeatures
type SphericalKernel struct{}

// NewSphericalKernel returns default geometry kernel
func NewSphericalKernel() SphericalKernel {
	return SphericalKernel{}
}

// Distance returns great-circle distance (kilometers)
func (SphericalKernel) Distance(a, b orb.Point) float64 {
	return greatCircleDistance(geoPointFromOrb(a), geoPointFromOrb(b))
}

// Circle returns closed polygon with given number of segments. Segments below 4 fallback to DEFAULT_CIRCLE_SEGMENTS
func (SphericalKernel) Circle(center orb.Point, radiusKm float64, segments int) orb.Polygon {
	if segments < 4 {
		segments = DEFAULT_CIRCLE_SEGMENTS
	}
	return circlePolygon(geoPointFromOrb(center), radiusKm, segments)
}

// Intersects reports whether a and b overlap, touch or one encloses the other
func (SphericalKernel) Intersects(a, b orb.Geometry) (bool, error) {
	if _, err := areal(a); err != nil {
		return false, err
	}
	if _, err := areal(b); err != nil {
		return false, err
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false, nil
	}
	ga, err := toSimpleFeature(a)
	if err != nil {
		return false, err
	}
	gb, err := toSimpleFeature(b)
	if err != nil {
		return false, err
	}
	return geom.Intersects(ga, gb), nil
}

// toSimpleFeature converts orb geometry through WKB. Polygons simplefeatures considers invalid
// (self-intersecting rings, holes outside shell) give ErrInvalidGeometry
func toSimpleFeature(g orb.Geometry) (geom.Geometry, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return geom.Geometry{}, errors.Wrap(err, "Can't encode geometry to WKB")
	}
	sf, err := geom.UnmarshalWKB(data)
	if err != nil {
		return geom.Geometry{}, errors.Wrapf(ErrInvalidGeometry, "%s", err.Error())
	}
	return sf, nil
}

// ValidateGeometry checks that geometry is Polygon or MultiPolygon made of closed rings
// with at least 4 finite lon/lat points
func ValidateGeometry(g orb.Geometry) error {
	_, err := areal(g)
	return err
}

// areal returns polygons of given geometry or ErrInvalidGeometry
func areal(g orb.Geometry) ([]orb.Polygon, error) {
	var polys []orb.Polygon
	switch v := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{v}
	case orb.MultiPolygon:
		polys = v
	case nil:
		return nil, errors.Wrap(ErrInvalidGeometry, "geometry is absent")
	default:
		return nil, errors.Wrapf(ErrInvalidGeometry, "unsupported geometry type '%s'", g.GeoJSONType())
	}
	if len(polys) == 0 {
		return nil, errors.Wrap(ErrInvalidGeometry, "empty multipolygon")
	}
	for i, poly := range polys {
		if len(poly) == 0 {
			return nil, errors.Wrapf(ErrInvalidGeometry, "polygon %d has no rings", i)
		}
		for j, ring := range poly {
			if err := validateRing(ring); err != nil {
				return nil, errors.Wrapf(err, "polygon %d ring %d", i, j)
			}
		}
	}
	return polys, nil
}

func validateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return errors.Wrapf(ErrInvalidGeometry, "ring has %d points", len(ring))
	}
	if !ring.Closed() {
		return errors.Wrap(ErrInvalidGeometry, "ring is not closed")
	}
	for _, pt := range ring {
		lon, lat := pt.Lon(), pt.Lat()
		if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
			return errors.Wrap(ErrInvalidGeometry, "non-finite coordinate")
		}
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			return errors.Wrapf(ErrInvalidGeometry, "coordinate out of range (%f, %f)", lon, lat)
		}
	}
	return nil
}
