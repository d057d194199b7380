package georadius

import (
	"github.com/paulmach/orb"
)

// ScreenPoint is pixel position relative to top-left corner of map canvas
type ScreenPoint struct {
	X float64
	Y float64
}

// PointerEvent is single pointer sample. Geo is optional: when nil, Screen is unprojected by Surface
type PointerEvent struct {
	Screen ScreenPoint
	Geo    *orb.Point
}

// Surface is host map engine the draw controller attaches to.
// Implementations must not call back into DrawController from these methods
type Surface interface {
	// Unproject converts canvas pixel to lon/lat
	Unproject(pt ScreenPoint) orb.Point
	// SetNavigation turns pan, zoom and double-click zoom on or off
	SetNavigation(enabled bool)
	// CaptureGlobalPointer routes move/up events of the whole input surface to the controller,
	// so gesture survives pointer leaving the canvas
	CaptureGlobalPointer()
	// ReleaseGlobalPointer undoes CaptureGlobalPointer
	ReleaseGlobalPointer()
	// SetCircle draws (or replaces) live circle overlay
	SetCircle(poly orb.Polygon)
	// ClearCircle removes circle overlay
	ClearCircle()
	// ShowRadiusLabel shows (or moves) floating radius label
	ShowRadiusLabel(at orb.Point, text string)
	HideRadiusLabel()
	// ShowTotalPopup shows popup with total value of selection
	ShowTotalPopup(at orb.Point, total float64)
	ClosePopup()
}
