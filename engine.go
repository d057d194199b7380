package georadius

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/LdDl/georadius/internal/logging"
)

var (
	// ErrMirrorNotInitialized is returned when selection is finalized before any feature collection was published
	ErrMirrorNotInitialized = errors.New("feature mirror has never been written")
	// ErrEmptyCircle is returned for circle without any ring
	ErrEmptyCircle = errors.New("circle polygon is empty")
)

// AggregatedMunicipality is one feature found inside radius. Never mutated after creation
type AggregatedMunicipality struct {
	Kind             FeatureKind            `json:"kind"`
	OriginCode       string                 `json:"origin_code"`
	DestinationCode  string                 `json:"destination_code,omitempty"`
	Name             string                 `json:"name"`
	Region           string                 `json:"region"`
	Value            float64                `json:"value"`
	ProductBreakdown map[ProductKey]float64 `json:"product_breakdown"`
	RawAttributes    map[string]interface{} `json:"raw_attributes"`
}

// Subtotals sums values of matched features
type Subtotals struct {
	Origin      float64 `json:"origin"`
	Destination float64 `json:"destination"`
	Total       float64 `json:"total"`
}

// Aggregation is output of Engine for single finalized circle
type Aggregation struct {
	Circle      orb.Polygon
	Criterion   Criterion
	Filters     AppliedFilters
	Subtotals   Subtotals
	Hubs        []AggregatedMunicipality
	Peripheries []AggregatedMunicipality
	// Skipped is number of features the geometry kernel failed on
	Skipped int
	// source is the snapshot features were matched against
	source Snapshot
}

// Empty reports whether nothing was found inside radius
func (agg *Aggregation) Empty() bool {
	return agg == nil || (len(agg.Hubs) == 0 && len(agg.Peripheries) == 0)
}

// Engine finds features intersecting circle and sums their values
type Engine struct {
	mirror    *Mirror
	kernel    Kernel
	criterion Criterion
	log       logging.Logger
	metrics   *Metrics
}

// NewEngine returns engine reading features from given mirror
func NewEngine(mirror *Mirror, options ...func(*Engine)) *Engine {
	engine := &Engine{
		mirror:    mirror,
		kernel:    NewSphericalKernel(),
		criterion: CriterionIntersects,
		log:       logging.NewNop(),
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// WithKernel sets geometry kernel
func WithKernel(kernel Kernel) func(*Engine) {
	return func(engine *Engine) {
		engine.kernel = kernel
	}
}

// WithEngineCriterion sets criterion recorded in results. Matching is always by intersection
func WithEngineCriterion(criterion Criterion) func(*Engine) {
	return func(engine *Engine) {
		engine.criterion = criterion
	}
}

func WithEngineLogger(log logging.Logger) func(*Engine) {
	return func(engine *Engine) {
		engine.log = log.Named("engine")
	}
}

func WithEngineMetrics(metrics *Metrics) func(*Engine) {
	return func(engine *Engine) {
		engine.metrics = metrics
	}
}

// Criterion returns criterion recorded in results
func (engine *Engine) Criterion() Criterion {
	return engine.criterion
}

// Aggregate matches latest published features against circle.
// On failure empty aggregation is returned together with error
func (engine *Engine) Aggregate(circle orb.Polygon, filters AppliedFilters) (*Aggregation, error) {
	st := time.Now()
	agg := &Aggregation{
		Circle:      circle,
		Criterion:   engine.criterion,
		Filters:     filters.clone(),
		Hubs:        []AggregatedMunicipality{},
		Peripheries: []AggregatedMunicipality{},
	}
	if len(circle) == 0 {
		engine.metrics.observeAggregation("failed", time.Since(st), 0, 0, 0)
		return agg, ErrEmptyCircle
	}
	snapshot, ok := engine.mirror.ReadLatest()
	if !ok {
		engine.metrics.observeAggregation("failed", time.Since(st), 0, 0, 0)
		return agg, ErrMirrorNotInitialized
	}
	agg.source = snapshot

	agg.Hubs, agg.Subtotals.Origin = engine.collect(circle, snapshot.Hubs, agg)
	agg.Peripheries, agg.Subtotals.Destination = engine.collect(circle, snapshot.Peripheries, agg)
	agg.Subtotals.Origin = engine.finite("origin", agg.Subtotals.Origin)
	agg.Subtotals.Destination = engine.finite("destination", agg.Subtotals.Destination)
	agg.Subtotals.Total = engine.finite("total", agg.Subtotals.Origin+agg.Subtotals.Destination)

	outcome := "matched"
	if agg.Empty() {
		outcome = "empty"
	}
	took := time.Since(st)
	engine.metrics.observeAggregation(outcome, took, len(agg.Hubs), len(agg.Peripheries), agg.Skipped)
	engine.log.Debug("aggregation done",
		logging.Int("hubs", len(agg.Hubs)),
		logging.Int("peripheries", len(agg.Peripheries)),
		logging.Int("skipped", agg.Skipped),
		logging.Float64("total", agg.Subtotals.Total),
		logging.Duration("took", took),
	)
	return agg, nil
}

// collect returns matched features sorted by value (descending, stable) and sum of their values
func (engine *Engine) collect(circle orb.Polygon, features []*Feature, agg *Aggregation) ([]AggregatedMunicipality, float64) {
	matched := make([]AggregatedMunicipality, 0)
	sum := 0.0
	for i, f := range features {
		if !f.HasGeometry() {
			continue
		}
		inside, err := engine.matches(circle, f.Geometry)
		if err != nil {
			agg.Skipped++
			engine.log.Warn("feature skipped",
				logging.String("kind", f.Kind.String()),
				logging.String("code", f.Code),
				logging.Int("index", i),
				logging.Err(err),
			)
			continue
		}
		if !inside {
			continue
		}
		m := aggregateFeature(f)
		sum += m.Value
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Value > matched[j].Value
	})
	return matched, sum
}

// finite returns sum unchanged or 0 when it overflowed, same as single values are treated
func (engine *Engine) finite(name string, sum float64) float64 {
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		engine.log.Warn("non-finite subtotal", logging.String("subtotal", name))
		return 0
	}
	return sum
}

// matches reports whether geometry intersects circle. Partial overlap counts whatever criterion is recorded.
// Kernel panics are turned into errors so single bad feature never aborts aggregation
func (engine *Engine) matches(circle orb.Polygon, geom orb.Geometry) (inside bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			inside = false
			err = errors.Errorf("geometry kernel panic: %v", r)
		}
	}()
	return engine.kernel.Intersects(circle, geom)
}

func aggregateFeature(f *Feature) AggregatedMunicipality {
	m := AggregatedMunicipality{
		Kind:             f.Kind,
		Name:             f.Name,
		Region:           f.Region,
		Value:            f.Total(),
		ProductBreakdown: DeriveBreakdown(f.Kind, f.Attributes, f.Products),
		RawAttributes:    f.Attributes,
	}
	if f.Kind == KindPeriphery {
		m.OriginCode = f.HubCode
		m.DestinationCode = f.Code
	} else {
		m.OriginCode = f.Code
	}
	return m
}
