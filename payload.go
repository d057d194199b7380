package georadius

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/LdDl/georadius/internal/logging"
)

// RadiusSelection is circle drawn by operator: created on pointer down, updated on every move, finalized on pointer up
type RadiusSelection struct {
	Center   orb.Point
	RadiusKm float64
	Polygon  orb.Polygon
}

// Valid reports whether selection may be used as spatial filter
func (rs *RadiusSelection) Valid() bool {
	return rs != nil && len(rs.Polygon) > 0 && rs.RadiusKm > 0
}

// Metadata describes how and when selection was made
type Metadata struct {
	SelectionID    string         `json:"selection_id"`
	RadiusKm       float64        `json:"radius_km"`
	Center         orb.Point      `json:"center"`
	Criterion      string         `json:"criterion"`
	Timestamp      string         `json:"timestamp"`
	AppliedFilters AppliedFilters `json:"applied_filters"`
}

// ExportGeometry carries geometries of circle and matched features so exporters
// can redraw map without repeating spatial query
type ExportGeometry struct {
	Circle      orb.Polygon
	Hubs        []*Feature
	Peripheries []*Feature
}

// AggregationResult is the only data contract with result consumers. Consumer owns it after emission
type AggregationResult struct {
	Metadata    Metadata                 `json:"metadata"`
	Subtotals   Subtotals                `json:"subtotals"`
	Hubs        []AggregatedMunicipality `json:"hubs"`
	Peripheries []AggregatedMunicipality `json:"peripheries"`
	Combined    []AggregatedMunicipality `json:"combined"`
	Export      *ExportGeometry          `json:"-"`
	// Diagnostic is set when aggregation failed as a whole
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Empty reports whether nothing was found inside radius
func (result *AggregationResult) Empty() bool {
	return len(result.Hubs) == 0 && len(result.Peripheries) == 0
}

// Builder stamps aggregation with metadata and hands it to consumer
type Builder struct {
	clock          func() time.Time
	newID          func() string
	attachGeometry bool
	log            logging.Logger
}

// NewBuilder returns builder. By default it attaches export geometry
func NewBuilder(options ...func(*Builder)) *Builder {
	builder := &Builder{
		clock:          time.Now,
		newID:          func() string { return uuid.New().String() },
		attachGeometry: true,
		log:            logging.NewNop(),
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

func WithClock(clock func() time.Time) func(*Builder) {
	return func(builder *Builder) {
		builder.clock = clock
	}
}

func WithIDGenerator(newID func() string) func(*Builder) {
	return func(builder *Builder) {
		builder.newID = newID
	}
}

// WithExportGeometry turns attaching of export geometry on or off
func WithExportGeometry(attach bool) func(*Builder) {
	return func(builder *Builder) {
		builder.attachGeometry = attach
	}
}

func WithBuilderLogger(log logging.Logger) func(*Builder) {
	return func(builder *Builder) {
		builder.log = log.Named("payload")
	}
}

// Build formats aggregation. No spatial work is done here
func (builder *Builder) Build(agg *Aggregation, selection RadiusSelection, filters AppliedFilters) AggregationResult {
	if agg == nil {
		agg = &Aggregation{Criterion: CriterionIntersects}
	}
	result := AggregationResult{
		Metadata: Metadata{
			SelectionID:    builder.newID(),
			RadiusKm:       selection.RadiusKm,
			Center:         selection.Center,
			Criterion:      agg.Criterion.String(),
			Timestamp:      builder.clock().UTC().Format(time.RFC3339Nano),
			AppliedFilters: filters.clone(),
		},
		Subtotals:   agg.Subtotals,
		Hubs:        append([]AggregatedMunicipality{}, agg.Hubs...),
		Peripheries: append([]AggregatedMunicipality{}, agg.Peripheries...),
	}
	result.Combined = make([]AggregatedMunicipality, 0, len(result.Hubs)+len(result.Peripheries))
	result.Combined = append(result.Combined, result.Hubs...)
	result.Combined = append(result.Combined, result.Peripheries...)
	if builder.attachGeometry {
		result.Export = exportGeometry(agg, selection)
	}
	return result
}

// Failed returns result without matches carrying diagnostic of what went wrong
func (builder *Builder) Failed(selection RadiusSelection, filters AppliedFilters, criterion Criterion, cause error) AggregationResult {
	result := builder.Build(&Aggregation{Criterion: criterion}, selection, filters)
	if cause != nil {
		result.Diagnostic = cause.Error()
	}
	return result
}

// Emit hands result to consumer once. Builder keeps no reference to it
func (builder *Builder) Emit(result AggregationResult, consumer func(AggregationResult)) {
	if consumer == nil {
		builder.log.Debug("no consumer for result", logging.String("selection_id", result.Metadata.SelectionID))
		return
	}
	consumer(result)
}

// exportGeometry looks up matched features by code in the snapshot aggregation was made against
func exportGeometry(agg *Aggregation, selection RadiusSelection) *ExportGeometry {
	circle := agg.Circle
	if len(circle) == 0 {
		circle = selection.Polygon
	}
	export := &ExportGeometry{
		Circle:      circle,
		Hubs:        make([]*Feature, 0, len(agg.Hubs)),
		Peripheries: make([]*Feature, 0, len(agg.Peripheries)),
	}
	hubsByCode := indexByCode(agg.source.Hubs)
	for _, m := range agg.Hubs {
		if f, ok := hubsByCode[m.OriginCode]; ok {
			export.Hubs = append(export.Hubs, f)
		}
	}
	peripheriesByCode := indexByCode(agg.source.Peripheries)
	for _, m := range agg.Peripheries {
		if f, ok := peripheriesByCode[m.DestinationCode]; ok {
			export.Peripheries = append(export.Peripheries, f)
		}
	}
	return export
}

// indexByCode maps code to first feature with geometry carrying it
func indexByCode(features []*Feature) map[string]*Feature {
	idx := make(map[string]*Feature, len(features))
	for _, f := range features {
		if !f.HasGeometry() {
			continue
		}
		if _, ok := idx[f.Code]; !ok {
			idx[f.Code] = f
		}
	}
	return idx
}
