package datacommons

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-migration-pipeline/internal/observability"
)

type fakeProvider struct {
	calls  int
	series map[string]map[string]float64
	err    error
}

func (f *fakeProvider) StatSeries(_ context.Context, geoID, statVar string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series[geoID+"|"+statVar], nil
}

func TestCachedProviderCachesSeries(t *testing.T) {
	inner := &fakeProvider{
		series: map[string]map[string]float64{
			"geoId/06|crime": {"2011": 100, "2012": 110},
		},
	}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	first, err := cached.StatSeries(context.Background(), "geoId/06", "crime")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"2011": 100, "2012": 110}, first)
	assert.Equal(t, 1, inner.calls)

	second, err := cached.StatSeries(context.Background(), "geoId/06", "crime")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second lookup should hit the cache")
}

func TestCachedProviderDistinguishesVariables(t *testing.T) {
	inner := &fakeProvider{
		series: map[string]map[string]float64{
			"geoId/06|crime":  {"2011": 100},
			"geoId/06|hazard": {"2021": 9.5},
		},
	}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	crime, err := cached.StatSeries(context.Background(), "geoId/06", "crime")
	require.NoError(t, err)
	hazard, err := cached.StatSeries(context.Background(), "geoId/06", "hazard")
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"2011": 100}, crime)
	assert.Equal(t, map[string]float64{"2021": 9.5}, hazard)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProviderDoesNotCacheEmptySeries(t *testing.T) {
	inner := &fakeProvider{series: map[string]map[string]float64{}}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	series, err := cached.StatSeries(context.Background(), "geoId/78010", "crime")
	require.NoError(t, err)
	assert.Empty(t, series)

	_, err = cached.StatSeries(context.Background(), "geoId/78010", "crime")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "empty series should not be cached")
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &fakeProvider{err: errors.New("connection refused")}
	cached := NewCachedProvider(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.StatSeries(context.Background(), "geoId/06", "crime")
	require.Error(t, err)

	_, err = cached.StatSeries(context.Background(), "geoId/06", "crime")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProviderEvictsLeastRecentlyUsed(t *testing.T) {
	inner := &fakeProvider{
		series: map[string]map[string]float64{
			"geoId/01|crime": {"2011": 1},
			"geoId/02|crime": {"2011": 2},
			"geoId/04|crime": {"2011": 3},
		},
	}
	cached := NewCachedProvider(inner, 2, observability.NewMetricsForTesting())

	ctx := context.Background()
	_, err := cached.StatSeries(ctx, "geoId/01", "crime")
	require.NoError(t, err)
	_, err = cached.StatSeries(ctx, "geoId/02", "crime")
	require.NoError(t, err)

	// Touch 01 so 02 becomes the eviction candidate.
	_, err = cached.StatSeries(ctx, "geoId/01", "crime")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	_, err = cached.StatSeries(ctx, "geoId/04", "crime")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)

	// 01 survived the eviction, 02 did not.
	_, err = cached.StatSeries(ctx, "geoId/01", "crime")
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)

	_, err = cached.StatSeries(ctx, "geoId/02", "crime")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}
