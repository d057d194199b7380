package georadius

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const traceJSON = `{
	"viewport": {"center": [-46.633, -23.55], "zoom": 9, "width": 800, "height": 600},
	"events": [
		{"type": "down", "x": 400, "y": 300},
		{"type": "up"},
		{"type": "mode", "on": true},
		{"type": "down", "x": 400, "y": 300},
		{"type": "move", "x": 450, "y": 300},
		{"type": "move", "x": 500, "y": 300},
		{"type": "up"},
		{"type": "region", "region": "RJ"},
		{"type": "down", "lon": -46.633, "lat": -23.55},
		{"type": "move", "lon": -46.5, "lat": -23.55},
		{"type": "up"},
		{"type": "clear"}
	]
}`

func TestReplay(t *testing.T) {
	trace, err := ReadTrace(strings.NewReader(traceJSON))
	require.NoError(t, err)
	require.Len(t, trace.Events, 12)
	assert.Equal(t, 9.0, trace.Viewport.Zoom)

	store := NewFeatureStore(NewMirror())
	store.SetHubs([]*Feature{
		hub("3550308", square(saoPaulo.Lon(), saoPaulo.Lat(), 0.02), map[string]interface{}{"valor_total_origem": 100.0}),
	})
	surface := NewHeadlessSurface(trace.Viewport)
	ctrl := NewDrawController(surface, NewEngine(store.Mirror()), WithFilters(store.AppliedFilters))

	results, err := Replay(trace, ctrl, store)
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	assert.Greater(t, first.Metadata.RadiusKm, 0.0)
	require.Len(t, first.Hubs, 1)
	assert.Equal(t, 100.0, first.Subtotals.Total)
	assert.InDelta(t, saoPaulo.Lon(), first.Metadata.Center.Lon(), 1e-6)

	// Region refresh hides SP hub before second gesture
	second := results[1]
	assert.True(t, second.Empty())
	assert.Equal(t, []string{"RJ"}, second.Metadata.AppliedFilters.Regions)

	assert.Nil(t, surface.Circle)
	assert.Equal(t, StateArming, ctrl.State())
}

func TestReplayErrors(t *testing.T) {
	ctrl := NewDrawController(NewHeadlessSurface(Viewport{}), NewEngine(NewMirror()))

	results, err := Replay(nil, ctrl, nil)
	assert.Error(t, err)
	assert.Empty(t, results)

	_, err = Replay(&Trace{}, nil, nil)
	assert.Error(t, err)

	_, err = Replay(&Trace{Events: []TraceEvent{{Type: "region", Region: "SP"}}}, ctrl, nil)
	assert.Error(t, err)

	_, err = Replay(&Trace{Events: []TraceEvent{{Type: "mode", On: true}, {Type: "zoom"}}}, ctrl, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 1")

	_, err = ReadTrace(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestHeadlessSurfaceProjection(t *testing.T) {
	surface := NewHeadlessSurface(Viewport{Center: saoPaulo, Zoom: 10})
	assert.Equal(t, 1024.0, surface.Viewport.Width)
	assert.Equal(t, 768.0, surface.Viewport.Height)

	center := surface.Unproject(ScreenPoint{X: 512, Y: 384})
	assert.InDelta(t, saoPaulo.Lon(), center.Lon(), 1e-9)
	assert.InDelta(t, saoPaulo.Lat(), center.Lat(), 1e-9)

	// Screen Y grows downwards
	below := surface.Unproject(ScreenPoint{X: 512, Y: 484})
	assert.Less(t, below.Lat(), saoPaulo.Lat())

	pt := surface.Unproject(ScreenPoint{X: 100, Y: 50})
	px := surface.Project(pt)
	assert.InDelta(t, 100.0, px.X, 1e-6)
	assert.InDelta(t, 50.0, px.Y, 1e-6)
}
