package georadius

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// FeatureKind discriminates hubs from peripheries
type FeatureKind uint16

const (
	KindHub = FeatureKind(iota + 1)
	KindPeriphery
)

func (iotaIdx FeatureKind) String() string {
	switch iotaIdx {
	case KindHub:
		return "Polo"
	case KindPeriphery:
		return "Periferia"
	default:
		return "undefined"
	}
}

// MarshalText encodes kind as its display name
func (iotaIdx FeatureKind) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// UnmarshalText decodes display name written by MarshalText
func (iotaIdx *FeatureKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Polo":
		*iotaIdx = KindHub
	case "Periferia":
		*iotaIdx = KindPeriphery
	default:
		return errors.Errorf("unknown feature kind '%s'", string(text))
	}
	return nil
}

// Feature is municipality taking part in radius selection.
// Hub: Code is its own code, HubCode equals Code.
// Periphery: Code is its own (destination) code, HubCode references owning hub
type Feature struct {
	Kind    FeatureKind
	Code    string
	HubCode string
	Name    string
	Region  string
	// Geometry is nil when feature has no usable polygon; such feature never takes part in spatial queries
	Geometry   orb.Geometry
	Attributes map[string]interface{}
	// Products is optional pre-computed product breakdown
	Products map[ProductKey]float64
}

// HasGeometry reports whether feature can take part in spatial queries
func (f *Feature) HasGeometry() bool {
	return f != nil && f.Geometry != nil
}

// Total returns total value of feature: origin side for hubs, destination side for peripheries
func (f *Feature) Total() float64 {
	return ParseValue(f.Attributes[totalField(f.Kind)])
}

// stringAttr returns attribute as trimmed string; numbers are printed without exponent
func stringAttr(attrs map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := attrs[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}
