package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
)

// --- mock for cache tests ---

type countingLoader struct {
	calls     int
	err       error
	refIssues int
}

func (m *countingLoader) Load(_ context.Context, req Request) (*domain.Dataset, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Dataset{Variant: req.Variant, Year: req.Year, Region: req.Region, ReferenceIssues: m.refIssues}, nil
}

// --- CachedLoader tests ---

func TestCachedLoader_Hit(t *testing.T) {
	inner := &countingLoader{}
	m := observability.NewMetricsForTesting()
	cached := NewCachedLoader(inner, 4, m)
	req := Request{Variant: VariantTRI, Year: 2022, Region: "TX"}

	d1, err := cached.Load(context.Background(), req)
	require.NoError(t, err)
	d2, err := cached.Load(context.Background(), Request{Variant: VariantTRI, Year: 2022, Region: "tx"})
	require.NoError(t, err)

	assert.Same(t, d1, d2, "datasets are shared, not copied")
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.DatasetCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.DatasetCache.WithLabelValues("miss")), 0)
}

func TestCachedLoader_DifferentKeysMiss(t *testing.T) {
	inner := &countingLoader{}
	cached := NewCachedLoader(inner, 4, observability.NewMetricsForTesting())

	_, _ = cached.Load(context.Background(), Request{Variant: VariantTRI, Year: 2022, Region: "TX"})
	_, _ = cached.Load(context.Background(), Request{Variant: VariantTRI, Year: 2021, Region: "TX"})
	_, _ = cached.Load(context.Background(), Request{Variant: VariantTRIToxicity, Year: 2022, Region: "TX"})

	assert.Equal(t, 3, inner.calls)
}

func TestCachedLoader_ErrorsNotCached(t *testing.T) {
	inner := &countingLoader{err: errors.New("upstream down")}
	cached := NewCachedLoader(inner, 4, observability.NewMetricsForTesting())
	req := Request{Variant: VariantTRI, Year: 2022, Region: "TX"}

	_, err := cached.Load(context.Background(), req)
	require.Error(t, err)

	inner.err = nil
	ds, err := cached.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoader_DegradedDatasetNotCached(t *testing.T) {
	inner := &countingLoader{refIssues: 1}
	m := observability.NewMetricsForTesting()
	cached := NewCachedLoader(inner, 4, m)
	req := Request{Variant: VariantTRI, Year: 2022, Region: "TX"}

	ds, err := cached.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.ReferenceIssues)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.DatasetCacheEntries), 0)

	// References recover: the next load rebuilds and is cached from then on.
	inner.refIssues = 0
	ds, err = cached.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, ds.ReferenceIssues)
	_, err = cached.Load(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.DatasetCacheEntries), 0)
}

func TestCachedLoader_EntriesGaugeTracksEviction(t *testing.T) {
	inner := &countingLoader{}
	m := observability.NewMetricsForTesting()
	cached := NewCachedLoader(inner, 2, m)

	for _, year := range []int{2020, 2021, 2022} {
		_, err := cached.Load(context.Background(), Request{Variant: VariantTRI, Year: year, Region: "TX"})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, inner.calls)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.DatasetCacheEntries), 0)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache[int](3)
	c.put("a", 1)
	c.put("b", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("b", 2)
	_, _ = c.get("a") // a becomes most recent
	c.put("c", 3)     // evicts b

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)
	c.put("a", "old")
	c.put("a", "new")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.size())
}
