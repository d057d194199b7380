package georadius

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/LdDl/georadius/internal/logging"
)

// State of draw controller
type State uint16

const (
	StateIdle = State(iota + 1)
	StateArming
	StateDrawing
)

func (iotaIdx State) String() string {
	switch iotaIdx {
	case StateIdle:
		return "idle"
	case StateArming:
		return "arming"
	case StateDrawing:
		return "drawing"
	default:
		return "undefined"
	}
}

// DrawController turns pointer gestures into radius selections.
// Exactly one result is emitted per completed gesture
type DrawController struct {
	mu       sync.Mutex
	surface  Surface
	engine   *Engine
	builder  *Builder
	kernel   Kernel
	filters  func() AppliedFilters
	onResult func(AggregationResult)
	segments int
	log      logging.Logger
	metrics  *Metrics

	state         State
	selectionMode bool
	selection     *RadiusSelection
}

func (ctrl *DrawController) String() string {
	return fmt.Sprintf(`
Draw controller parameters:
	state: '%s'
	selection_mode: %t
	segments: %d
	criterion: '%s'
	`,
		ctrl.State(),
		ctrl.SelectionMode(),
		ctrl.segments,
		ctrl.engine.Criterion(),
	)
}

// NewDrawController attaches controller to surface. Features are read through engine's mirror at the moment of release
func NewDrawController(surface Surface, engine *Engine, options ...func(*DrawController)) *DrawController {
	ctrl := &DrawController{
		surface:  surface,
		engine:   engine,
		builder:  NewBuilder(),
		kernel:   NewSphericalKernel(),
		filters:  func() AppliedFilters { return AppliedFilters{} },
		segments: DEFAULT_CIRCLE_SEGMENTS,
		log:      logging.NewNop(),
		state:    StateIdle,
	}
	for _, option := range options {
		option(ctrl)
	}
	return ctrl
}

// WithSegments sets number of vertices of live circle
func WithSegments(segments int) func(*DrawController) {
	return func(ctrl *DrawController) {
		if segments >= 4 {
			ctrl.segments = segments
		}
	}
}

// WithBuilder sets payload builder
func WithBuilder(builder *Builder) func(*DrawController) {
	return func(ctrl *DrawController) {
		ctrl.builder = builder
	}
}

// WithControllerKernel sets kernel used for live circle. It should match engine's kernel
func WithControllerKernel(kernel Kernel) func(*DrawController) {
	return func(ctrl *DrawController) {
		ctrl.kernel = kernel
	}
}

// WithFilters sets source of applied filters stamped into results (e.g. FeatureStore.AppliedFilters)
func WithFilters(filters func() AppliedFilters) func(*DrawController) {
	return func(ctrl *DrawController) {
		ctrl.filters = filters
	}
}

// WithOnResult sets result consumer
func WithOnResult(onResult func(AggregationResult)) func(*DrawController) {
	return func(ctrl *DrawController) {
		ctrl.onResult = onResult
	}
}

func WithControllerLogger(log logging.Logger) func(*DrawController) {
	return func(ctrl *DrawController) {
		ctrl.log = log.Named("draw")
	}
}

func WithControllerMetrics(metrics *Metrics) func(*DrawController) {
	return func(ctrl *DrawController) {
		ctrl.metrics = metrics
	}
}

// State returns current state
func (ctrl *DrawController) State() State {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	return ctrl.state
}

// SelectionMode reports whether pointer gestures draw radius
func (ctrl *DrawController) SelectionMode() bool {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	return ctrl.selectionMode
}

// Selection returns copy of current (live or last finalized) selection
func (ctrl *DrawController) Selection() (RadiusSelection, bool) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.selection == nil {
		return RadiusSelection{}, false
	}
	return *ctrl.selection, true
}

// SetSelectionMode toggles selection mode. Turning it on clears previous selection visuals,
// turning it off cancels gesture in progress without aggregation
func (ctrl *DrawController) SetSelectionMode(on bool) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if on == ctrl.selectionMode {
		return
	}
	ctrl.selectionMode = on
	if on {
		ctrl.teardown()
		ctrl.state = StateArming
		ctrl.log.Debug("selection mode on")
		return
	}
	if ctrl.state == StateDrawing {
		ctrl.metrics.observeGesture("cancelled")
		ctrl.log.Debug("gesture cancelled by leaving selection mode")
	}
	ctrl.teardown()
	ctrl.state = StateIdle
}

// Clear removes visuals of current or last selection. Already emitted results stay valid
func (ctrl *DrawController) Clear() {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.state == StateDrawing {
		ctrl.metrics.observeGesture("cancelled")
	}
	ctrl.teardown()
	if ctrl.selectionMode {
		ctrl.state = StateArming
	} else {
		ctrl.state = StateIdle
	}
}

// teardown detaches gesture listeners and removes every visual artifact. Caller holds the lock
func (ctrl *DrawController) teardown() {
	if ctrl.state == StateDrawing {
		ctrl.surface.ReleaseGlobalPointer()
		ctrl.surface.SetNavigation(true)
	}
	ctrl.surface.ClearCircle()
	ctrl.surface.HideRadiusLabel()
	ctrl.surface.ClosePopup()
	ctrl.selection = nil
}

// PointerDown starts gesture if selection mode is on. Returns whether gesture started
func (ctrl *DrawController) PointerDown(ev PointerEvent) bool {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if !ctrl.selectionMode {
		return false
	}
	// New gesture supersedes everything left from previous one
	ctrl.teardown()
	center := ctrl.geo(ev)
	ctrl.selection = &RadiusSelection{Center: center}
	ctrl.surface.SetNavigation(false)
	ctrl.surface.CaptureGlobalPointer()
	ctrl.state = StateDrawing
	ctrl.log.Debug("gesture started", logging.Float64("lon", center.Lon()), logging.Float64("lat", center.Lat()))
	return true
}

// PointerMove recomputes live circle while drawing
func (ctrl *DrawController) PointerMove(ev PointerEvent) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.state != StateDrawing || ctrl.selection == nil {
		return
	}
	pt := ctrl.geo(ev)
	radius := ctrl.kernel.Distance(ctrl.selection.Center, pt)
	poly := ctrl.kernel.Circle(ctrl.selection.Center, radius, ctrl.segments)
	ctrl.selection.RadiusKm = radius
	ctrl.selection.Polygon = poly
	ctrl.surface.SetCircle(poly)
	ctrl.surface.ShowRadiusLabel(pt, radiusLabel(radius))
}

// PointerUp finalizes gesture. Result is returned too (and false if no result was produced)
func (ctrl *DrawController) PointerUp() (AggregationResult, bool) {
	ctrl.mu.Lock()
	if ctrl.state != StateDrawing {
		ctrl.mu.Unlock()
		return AggregationResult{}, false
	}
	ctrl.surface.ReleaseGlobalPointer()
	ctrl.surface.HideRadiusLabel()
	ctrl.surface.SetNavigation(true)
	ctrl.state = StateIdle
	if !ctrl.selection.Valid() {
		ctrl.metrics.observeGesture("no_circle")
		ctrl.log.Debug("gesture ended without circle")
		ctrl.mu.Unlock()
		return AggregationResult{}, false
	}
	selection := *ctrl.selection
	filters := ctrl.filters()
	result := ctrl.finalize(selection, filters)
	if !result.Empty() {
		ctrl.surface.ShowTotalPopup(selection.Center, result.Subtotals.Total)
	}
	ctrl.metrics.observeGesture("finalized")
	onResult := ctrl.onResult
	ctrl.mu.Unlock()

	// Consumer runs outside the lock so it may use controller
	ctrl.builder.Emit(result, onResult)
	return result, true
}

// finalize aggregates and builds result. Caller holds the lock
func (ctrl *DrawController) finalize(selection RadiusSelection, filters AppliedFilters) AggregationResult {
	agg, err := ctrl.engine.Aggregate(selection.Polygon, filters)
	if err != nil {
		ctrl.log.Error("aggregation failed", logging.Float64("radius_km", selection.RadiusKm), logging.Err(err))
		return ctrl.builder.Failed(selection, filters, ctrl.engine.Criterion(), err)
	}
	result := ctrl.builder.Build(agg, selection, filters)
	ctrl.log.Info("radius selection finalized",
		logging.String("selection_id", result.Metadata.SelectionID),
		logging.Float64("radius_km", selection.RadiusKm),
		logging.Int("hubs", len(result.Hubs)),
		logging.Int("peripheries", len(result.Peripheries)),
		logging.Float64("total", result.Subtotals.Total),
	)
	return result
}

func (ctrl *DrawController) geo(ev PointerEvent) orb.Point {
	if ev.Geo != nil {
		return *ev.Geo
	}
	return ctrl.surface.Unproject(ev.Screen)
}

func radiusLabel(radiusKm float64) string {
	return fmt.Sprintf("Raio: %.1f km", radiusKm)
}
