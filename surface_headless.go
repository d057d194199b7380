package georadius

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	tileSize = 256.0
)

// Viewport is Web Mercator view of headless surface
type Viewport struct {
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
}

// HeadlessSurface is Surface without canvas: it projects through Web Mercator viewport
// and keeps visual state in plain fields. Used for replaying recorded gestures and in tests
type HeadlessSurface struct {
	Viewport Viewport

	NavigationEnabled bool
	PointerCaptured   bool
	Circle            orb.Polygon
	LabelVisible      bool
	LabelAt           orb.Point
	LabelText         string
	PopupVisible      bool
	PopupAt           orb.Point
	PopupTotal        float64

	// CircleUpdates counts SetCircle calls
	CircleUpdates int
}

// NewHeadlessSurface returns surface with navigation enabled
func NewHeadlessSurface(viewport Viewport) *HeadlessSurface {
	if viewport.Width <= 0 {
		viewport.Width = 1024
	}
	if viewport.Height <= 0 {
		viewport.Height = 768
	}
	return &HeadlessSurface{
		Viewport:          viewport,
		NavigationEnabled: true,
	}
}

// resolution returns meters per pixel at viewport zoom
func (s *HeadlessSurface) resolution() float64 {
	return 2 * earthR / (tileSize * math.Pow(2, s.Viewport.Zoom))
}

// Unproject converts canvas pixel to lon/lat
func (s *HeadlessSurface) Unproject(pt ScreenPoint) orb.Point {
	res := s.resolution()
	center := pointToEuclidean(s.Viewport.Center)
	x := center.X() + (pt.X-s.Viewport.Width/2)*res
	y := center.Y() - (pt.Y-s.Viewport.Height/2)*res
	return pointFromEuclidean(orb.Point{x, y})
}

// Project converts lon/lat to canvas pixel
func (s *HeadlessSurface) Project(pt orb.Point) ScreenPoint {
	res := s.resolution()
	center := pointToEuclidean(s.Viewport.Center)
	p := pointToEuclidean(pt)
	return ScreenPoint{
		X: (p.X()-center.X())/res + s.Viewport.Width/2,
		Y: (center.Y()-p.Y())/res + s.Viewport.Height/2,
	}
}

func (s *HeadlessSurface) SetNavigation(enabled bool) { s.NavigationEnabled = enabled }
func (s *HeadlessSurface) CaptureGlobalPointer()      { s.PointerCaptured = true }
func (s *HeadlessSurface) ReleaseGlobalPointer()      { s.PointerCaptured = false }

func (s *HeadlessSurface) SetCircle(poly orb.Polygon) {
	s.Circle = poly
	s.CircleUpdates++
}

func (s *HeadlessSurface) ClearCircle() { s.Circle = nil }

func (s *HeadlessSurface) ShowRadiusLabel(at orb.Point, text string) {
	s.LabelVisible = true
	s.LabelAt = at
	s.LabelText = text
}

func (s *HeadlessSurface) HideRadiusLabel() {
	s.LabelVisible = false
	s.LabelText = ""
}

func (s *HeadlessSurface) ShowTotalPopup(at orb.Point, total float64) {
	s.PopupVisible = true
	s.PopupAt = at
	s.PopupTotal = total
}

func (s *HeadlessSurface) ClosePopup() {
	s.PopupVisible = false
	s.PopupTotal = 0
}
