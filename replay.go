package georadius

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// TraceEvent is one recorded UI event.
// Types: "mode" (On), "down"/"move" (X, Y screen pixels or Lon, Lat), "up", "clear", "region" (Region)
type TraceEvent struct {
	Type   string   `json:"type"`
	On     bool     `json:"on,omitempty"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
	Lat    *float64 `json:"lat,omitempty"`
	Region string   `json:"region,omitempty"`
}

// Trace is recorded gesture session
type Trace struct {
	Viewport Viewport     `json:"viewport"`
	Events   []TraceEvent `json:"events"`
}

// ReadTrace decodes JSON trace
func ReadTrace(r io.Reader) (*Trace, error) {
	trace := &Trace{}
	if err := json.NewDecoder(r).Decode(trace); err != nil {
		return nil, errors.Wrap(err, "Can't decode trace")
	}
	return trace, nil
}

// pointerEvent converts recorded sample. Geographic coordinates win over screen ones
func (ev TraceEvent) pointerEvent() PointerEvent {
	pe := PointerEvent{Screen: ScreenPoint{X: ev.X, Y: ev.Y}}
	if ev.Lon != nil && ev.Lat != nil {
		pt := orb.Point{*ev.Lon, *ev.Lat}
		pe.Geo = &pt
	}
	return pe
}

// Replay feeds trace through controller. Region events refresh store (store may be nil when trace has none).
// Results of every completed gesture are returned in order
func Replay(trace *Trace, ctrl *DrawController, store *FeatureStore) ([]AggregationResult, error) {
	results := []AggregationResult{}
	if trace == nil {
		return results, errors.New("trace is nil")
	}
	if ctrl == nil {
		return results, errors.New("draw controller is nil")
	}
	for i, ev := range trace.Events {
		switch ev.Type {
		case "mode":
			ctrl.SetSelectionMode(ev.On)
		case "down":
			ctrl.PointerDown(ev.pointerEvent())
		case "move":
			ctrl.PointerMove(ev.pointerEvent())
		case "up":
			if result, ok := ctrl.PointerUp(); ok {
				results = append(results, result)
			}
		case "clear":
			ctrl.Clear()
		case "region":
			if store == nil {
				return results, errors.Errorf("event %d: region refresh needs feature store", i)
			}
			store.SetRegion(ev.Region)
		default:
			return results, errors.Errorf("event %d: unknown type '%s'", i, ev.Type)
		}
	}
	return results, nil
}
