package georadius

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorLatestWins(t *testing.T) {
	mirror := NewMirror()
	_, ok := mirror.ReadLatest()
	assert.False(t, ok)

	first := []*Feature{hub("1", square(0, 0, 1), nil)}
	second := []*Feature{hub("2", square(0, 0, 1), nil), hub("3", nil, nil)}
	mirror.Write(first, nil)
	mirror.Write(second, first)

	snapshot, ok := mirror.ReadLatest()
	require.True(t, ok)
	assert.Equal(t, second, snapshot.Hubs)
	assert.Equal(t, first, snapshot.Peripheries)
}

func TestFeatureStorePublishesOnEveryChange(t *testing.T) {
	store := NewFeatureStore(NewMirror())
	_, ok := store.Mirror().ReadLatest()
	assert.False(t, ok)

	store.SetHubs([]*Feature{hub("1", square(0, 0, 1), nil)})
	snapshot, ok := store.Mirror().ReadLatest()
	require.True(t, ok)
	assert.Len(t, snapshot.Hubs, 1)
	assert.Empty(t, snapshot.Peripheries)

	store.SetPeripheries([]*Feature{periphery("10", "1", square(1, 1, 1), nil), nil})
	snapshot, _ = store.Mirror().ReadLatest()
	assert.Len(t, snapshot.Hubs, 1)
	assert.Len(t, snapshot.Peripheries, 1)
}

func TestFeatureStoreRegionFilter(t *testing.T) {
	store := NewFeatureStore(NewMirror())
	sp := hub("1", square(0, 0, 1), nil)
	rj := hub("2", square(0, 0, 1), nil)
	rj.Region = "RJ"
	store.SetHubs([]*Feature{sp, rj})

	store.SetRegion("rj")
	snapshot, _ := store.Mirror().ReadLatest()
	require.Len(t, snapshot.Hubs, 1)
	assert.Equal(t, "2", snapshot.Hubs[0].Code)
	assert.Equal(t, []string{"RJ"}, store.AppliedFilters().Regions)

	store.SetRegion(ALL_REGIONS)
	snapshot, _ = store.Mirror().ReadLatest()
	assert.Len(t, snapshot.Hubs, 2)
	assert.Empty(t, store.AppliedFilters().Regions)

	store.SetFilters(AppliedFilters{Regions: []string{"SP", "RJ"}, Products: []string{"VALOR_PD"}})
	snapshot, _ = store.Mirror().ReadLatest()
	assert.Len(t, snapshot.Hubs, 2)
	store.SetFilters(AppliedFilters{Regions: []string{"sp"}})
	snapshot, _ = store.Mirror().ReadLatest()
	require.Len(t, snapshot.Hubs, 1)
	assert.Equal(t, "1", snapshot.Hubs[0].Code)
}

func TestFeatureStoreFiltersAreCopied(t *testing.T) {
	store := NewFeatureStore(NewMirror())
	minValue := 10.0
	filters := AppliedFilters{Hubs: []string{"1"}, Products: []string{"VALOR_PD"}, MinValue: &minValue}
	store.SetFilters(filters)

	filters.Hubs[0] = "changed"
	minValue = 99
	got := store.AppliedFilters()
	assert.Equal(t, []string{"1"}, got.Hubs)
	require.NotNil(t, got.MinValue)
	assert.Equal(t, 10.0, *got.MinValue)
	assert.Nil(t, got.MaxValue)
}

func TestFeatureStoreSnapshotIsNotAliased(t *testing.T) {
	store := NewFeatureStore(NewMirror())
	hubs := []*Feature{hub("1", square(0, 0, 1), nil)}
	store.SetHubs(hubs)
	hubs[0] = hub("2", square(0, 0, 1), nil)
	snapshot, _ := store.Mirror().ReadLatest()
	assert.Equal(t, "1", snapshot.Hubs[0].Code)
}
