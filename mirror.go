package georadius

import (
	"sync/atomic"
)

// Snapshot is the visible content of feature store at some moment
type Snapshot struct {
	Hubs        []*Feature
	Peripheries []*Feature
}

// Mirror always holds the latest written snapshot. Long-lived pointer handlers read it at the moment of use
// instead of capturing feature collections when they are registered
type Mirror struct {
	latest atomic.Pointer[Snapshot]
}

// NewMirror returns mirror which has never been written
func NewMirror() *Mirror {
	return &Mirror{}
}

// Write replaces snapshot. Given slices must not be mutated afterwards
func (m *Mirror) Write(hubs, peripheries []*Feature) {
	m.latest.Store(&Snapshot{Hubs: hubs, Peripheries: peripheries})
}

// ReadLatest returns the most recent snapshot. False means mirror has never been written
func (m *Mirror) ReadLatest() (Snapshot, bool) {
	s := m.latest.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}
