package georadius

import (
	"strings"
	"sync"
)

const (
	// ALL_REGIONS disables region filter
	ALL_REGIONS = "ALL"
)

// AppliedFilters describes upstream filters active when selection is made
type AppliedFilters struct {
	Hubs     []string `json:"hubs"`
	Regions  []string `json:"regions"`
	Products []string `json:"products"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
}

func (af AppliedFilters) clone() AppliedFilters {
	out := AppliedFilters{
		Hubs:     append([]string{}, af.Hubs...),
		Regions:  append([]string{}, af.Regions...),
		Products: append([]string{}, af.Products...),
	}
	if af.MinValue != nil {
		v := *af.MinValue
		out.MinValue = &v
	}
	if af.MaxValue != nil {
		v := *af.MaxValue
		out.MaxValue = &v
	}
	return out
}

// FeatureStore keeps hub and periphery collections delivered by filtering layer
// and publishes visible subset to the mirror after every change
type FeatureStore struct {
	mu          sync.Mutex
	mirror      *Mirror
	hubs        []*Feature
	peripheries []*Feature
	regions     []string
	filters     AppliedFilters
}

// NewFeatureStore returns store publishing to given mirror
func NewFeatureStore(mirror *Mirror) *FeatureStore {
	return &FeatureStore{
		mirror: mirror,
	}
}

// Mirror returns mirror the store publishes to
func (store *FeatureStore) Mirror() *Mirror {
	return store.mirror
}

// SetHubs replaces hub collection
func (store *FeatureStore) SetHubs(hubs []*Feature) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.hubs = hubs
	store.publish()
}

// SetPeripheries replaces periphery collection
func (store *FeatureStore) SetPeripheries(peripheries []*Feature) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.peripheries = peripheries
	store.publish()
}

// SetRegion sets single region (state code) filter. Empty string or ALL_REGIONS disables it
func (store *FeatureStore) SetRegion(region string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.regions = normalizeRegions([]string{region})
	store.publish()
}

// SetFilters records filters applied upstream. Regions filter visibility, the rest is carried as metadata
func (store *FeatureStore) SetFilters(filters AppliedFilters) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.filters = filters.clone()
	store.regions = normalizeRegions(filters.Regions)
	store.publish()
}

// AppliedFilters returns copy of filters currently applied
func (store *FeatureStore) AppliedFilters() AppliedFilters {
	store.mu.Lock()
	defer store.mu.Unlock()
	out := store.filters.clone()
	out.Regions = append([]string{}, store.regions...)
	return out
}

// publish writes visible subset to mirror. Caller holds the lock
func (store *FeatureStore) publish() {
	store.mirror.Write(filterRegions(store.hubs, store.regions), filterRegions(store.peripheries, store.regions))
}

// normalizeRegions upper-cases region codes. Any ALL_REGIONS (or no codes at all) disables filter
func normalizeRegions(regions []string) []string {
	out := make([]string, 0, len(regions))
	for _, region := range regions {
		region = strings.ToUpper(strings.TrimSpace(region))
		if region == ALL_REGIONS {
			return nil
		}
		if region != "" {
			out = append(out, region)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// filterRegions returns features of given regions. Result is fresh slice, so mirror snapshot never aliases store state
func filterRegions(features []*Feature, regions []string) []*Feature {
	out := make([]*Feature, 0, len(features))
	for _, f := range features {
		if f == nil {
			continue
		}
		if len(regions) > 0 && !containsRegion(regions, f.Region) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func containsRegion(regions []string, region string) bool {
	for _, r := range regions {
		if strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}
