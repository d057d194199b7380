package georadius

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedBuilder(options ...func(*Builder)) *Builder {
	base := []func(*Builder){
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("BRT", -3*3600)) }),
		WithIDGenerator(func() string { return "sel-42" }),
	}
	return NewBuilder(append(base, options...)...)
}

func aggregationFixture(t *testing.T) (*Aggregation, RadiusSelection) {
	t.Helper()
	hubs := []*Feature{
		hub("1", square(saoPaulo.Lon(), saoPaulo.Lat(), 0.01), map[string]interface{}{"valor_total_origem": 10.0}),
		hub("2", square(saoPaulo.Lon(), saoPaulo.Lat(), 0.02), map[string]interface{}{"valor_total_origem": 20.0}),
	}
	peripheries := []*Feature{
		periphery("10", "1", square(saoPaulo.Lon(), saoPaulo.Lat(), 0.03), map[string]interface{}{"valor_total_destino": 5.0}),
	}
	mirror := NewMirror()
	mirror.Write(hubs, peripheries)
	kernel := NewSphericalKernel()
	selection := RadiusSelection{Center: saoPaulo, RadiusKm: 10, Polygon: kernel.Circle(saoPaulo, 10, 32)}
	agg, err := NewEngine(mirror).Aggregate(selection.Polygon, AppliedFilters{})
	require.NoError(t, err)
	return agg, selection
}

func TestBuilderBuild(t *testing.T) {
	agg, selection := aggregationFixture(t)
	minValue := 1.0
	filters := AppliedFilters{Regions: []string{"SP"}, Products: []string{"VALOR_PD"}, MinValue: &minValue}
	result := fixedBuilder().Build(agg, selection, filters)

	assert.Equal(t, "sel-42", result.Metadata.SelectionID)
	assert.Equal(t, "2024-03-01T12:30:00Z", result.Metadata.Timestamp)
	assert.Equal(t, 10.0, result.Metadata.RadiusKm)
	assert.Equal(t, saoPaulo, result.Metadata.Center)
	assert.Equal(t, "intersecta", result.Metadata.Criterion)
	assert.Equal(t, []string{"SP"}, result.Metadata.AppliedFilters.Regions)
	assert.Equal(t, []string{"VALOR_PD"}, result.Metadata.AppliedFilters.Products)
	require.NotNil(t, result.Metadata.AppliedFilters.MinValue)
	assert.Equal(t, 1.0, *result.Metadata.AppliedFilters.MinValue)
	assert.Equal(t, Subtotals{Origin: 30, Destination: 5, Total: 35}, result.Subtotals)

	require.Len(t, result.Combined, 3)
	assert.Equal(t, "2", result.Combined[0].OriginCode)
	assert.Equal(t, "1", result.Combined[1].OriginCode)
	assert.Equal(t, "10", result.Combined[2].DestinationCode)

	require.NotNil(t, result.Export)
	assert.Equal(t, selection.Polygon, result.Export.Circle)
	require.Len(t, result.Export.Hubs, 2)
	assert.Equal(t, "2", result.Export.Hubs[0].Code)
	require.Len(t, result.Export.Peripheries, 1)
	assert.Equal(t, "10", result.Export.Peripheries[0].Code)

	// Result must not share filter storage with caller
	filters.Regions[0] = "RJ"
	assert.Equal(t, []string{"SP"}, result.Metadata.AppliedFilters.Regions)
}

func TestBuilderWithoutExportGeometry(t *testing.T) {
	agg, selection := aggregationFixture(t)
	result := fixedBuilder(WithExportGeometry(false)).Build(agg, selection, AppliedFilters{})
	assert.Nil(t, result.Export)
	assert.Len(t, result.Combined, 3)
}

func TestBuilderFailed(t *testing.T) {
	selection := RadiusSelection{Center: saoPaulo, RadiusKm: 3, Polygon: NewSphericalKernel().Circle(saoPaulo, 3, 16)}
	result := fixedBuilder().Failed(selection, AppliedFilters{}, CriterionContains, ErrMirrorNotInitialized)
	assert.True(t, result.Empty())
	assert.NotNil(t, result.Hubs)
	assert.NotNil(t, result.Combined)
	assert.Equal(t, Subtotals{}, result.Subtotals)
	assert.Equal(t, "contem", result.Metadata.Criterion)
	assert.Equal(t, ErrMirrorNotInitialized.Error(), result.Diagnostic)
	require.NotNil(t, result.Export)
	assert.Equal(t, selection.Polygon, result.Export.Circle)
}

func TestBuilderEmit(t *testing.T) {
	builder := fixedBuilder()
	calls := 0
	builder.Emit(AggregationResult{}, func(AggregationResult) { calls++ })
	assert.Equal(t, 1, calls)
	assert.NotPanics(t, func() { builder.Emit(AggregationResult{}, nil) })
}

func TestDefaultBuilderGeneratesUniqueIDs(t *testing.T) {
	builder := NewBuilder()
	a := builder.Build(nil, RadiusSelection{}, AppliedFilters{})
	b := builder.Build(nil, RadiusSelection{}, AppliedFilters{})
	assert.Len(t, a.Metadata.SelectionID, 36)
	assert.NotEqual(t, a.Metadata.SelectionID, b.Metadata.SelectionID)
}

func TestResultJSON(t *testing.T) {
	agg, selection := aggregationFixture(t)
	result := fixedBuilder().Build(agg, selection, AppliedFilters{})
	b, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.NotContains(t, decoded, "Export")
	assert.NotContains(t, decoded, "diagnostic")
	combined := decoded["combined"].([]interface{})
	require.Len(t, combined, 3)
	first := combined[0].(map[string]interface{})
	assert.Equal(t, "Polo", first["kind"])
	assert.Equal(t, 20.0, first["value"])
	products := first["product_breakdown"].(map[string]interface{})
	assert.Contains(t, products, string(VALOR_PD))
}

func TestResultToFeatureCollection(t *testing.T) {
	agg, selection := aggregationFixture(t)
	result := fixedBuilder().Build(agg, selection, AppliedFilters{})
	fc := ResultToFeatureCollection(result)
	require.Len(t, fc.Features, 4)

	circle := fc.Features[0]
	assert.Equal(t, "radius", circle.Properties["kind"])
	assert.Equal(t, "sel-42", circle.Properties["selection_id"])
	require.NotNil(t, circle.Geometry)
	assert.True(t, circle.Geometry.IsPolygon())
	assert.Len(t, circle.Geometry.Polygon[0], 33)

	periphery := fc.Features[3]
	assert.Equal(t, "Periferia", periphery.Properties["kind"])
	assert.Equal(t, "1", periphery.Properties["origin_code"])
	assert.Equal(t, "10", periphery.Properties["destination_code"])
	require.NotNil(t, periphery.Geometry)
	assert.True(t, periphery.Geometry.IsPolygon())

	noExport := fixedBuilder(WithExportGeometry(false)).Build(agg, selection, AppliedFilters{})
	fc = ResultToFeatureCollection(noExport)
	require.Len(t, fc.Features, 3)
	assert.Nil(t, fc.Features[0].Geometry)
}

func TestPrepareGeometryText(t *testing.T) {
	poly := square(1, 2, 1)
	assert.Equal(t, "POLYGON((0 1,2 1,2 3,0 3,0 1))", PrepareWKTPolygon(poly))
	assert.Equal(t, "POINT(-46.633000 -23.550000)", PrepareWKTPoint(saoPaulo))

	s, err := PrepareGeoJSONPoint(orb.Point{1.5, 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Point","coordinates":[1.5,2]}`, s)

	s, err = PrepareGeoJSONPolygon(poly)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[[[0,1],[2,1],[2,3],[0,3],[0,1]]]}`, s)
}
