package pricing_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/cache"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/mocks"
	"github.com/gamedex/gd-indexer/internal/pricing"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

type testRatesMocks struct {
	ctrl  *gomock.Controller
	store *mocks.MockStore
	cache *mocks.MockCache
}

func setupTestRates(t *testing.T, ttl time.Duration) (pricing.RateProvider, *testRatesMocks) {
	ctrl := gomock.NewController(t)
	tm := &testRatesMocks{
		ctrl:  ctrl,
		store: mocks.NewMockStore(ctrl),
		cache: mocks.NewMockCache(ctrl),
	}
	p := pricing.NewStoreRateProvider(tm.store, tm.cache, adapter.NewJSON(), adapter.NewClock(), ttl)
	return p, tm
}

func cachedSnapshotJSON(t *testing.T, rates map[string]float64, fetchedAt time.Time) []byte {
	b, err := json.Marshal(map[string]any{
		"base":       "USD",
		"rates":      rates,
		"fetched_at": fetchedAt,
	})
	require.NoError(t, err)
	return b
}

func storedSnapshot(t *testing.T, kind schema.RateKind, rates map[string]float64, fetchedAt time.Time) *schema.ExchangeRate {
	raw, err := json.Marshal(rates)
	require.NoError(t, err)
	return &schema.ExchangeRate{
		Kind:         kind,
		BaseCurrency: "USD",
		Rates:        datatypes.JSON(raw),
		FetchedAt:    fetchedAt,
	}
}

func TestRateProvider_USDIsIdentity(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	// No cache or store access for the base currency
	rate, err := p.GetRate(context.Background(), "usd")

	require.NoError(t, err)
	assert.Equal(t, 1.0, rate.Rate)
	assert.False(t, rate.FallbackUsed)
}

func TestRateProvider_FreshCacheSkipsStore(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:fx").
		Return(cachedSnapshotJSON(t, map[string]float64{"JPY": 147.0}, time.Now()), nil)

	rate, err := p.GetRate(context.Background(), "JPY")

	require.NoError(t, err)
	assert.Equal(t, 147.0, rate.Rate)
	assert.False(t, rate.FallbackUsed)
}

func TestRateProvider_CacheMissReadsStoreAndCaches(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	fetchedAt := time.Now().Add(-time.Minute)
	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:fx").
		Return(nil, cache.ErrMiss)
	tm.store.EXPECT().
		GetLatestExchangeRate(gomock.Any(), schema.RateKindFX).
		Return(storedSnapshot(t, schema.RateKindFX, map[string]float64{"EUR": 0.92}, fetchedAt), nil)
	tm.cache.EXPECT().
		Set(gomock.Any(), "rates:fx", gomock.Any(), gomock.Any()).
		Return(nil)

	rate, err := p.GetRate(context.Background(), "EUR")

	require.NoError(t, err)
	assert.Equal(t, 0.92, rate.Rate)
	assert.False(t, rate.FallbackUsed)
	assert.WithinDuration(t, fetchedAt, rate.AsOf, time.Second)
}

func TestRateProvider_ExpiredCacheServedOnStoreFailure(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	staleAt := time.Now().Add(-2 * time.Hour)
	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:fx").
		Return(cachedSnapshotJSON(t, map[string]float64{"GBP": 0.79}, staleAt), nil)
	tm.store.EXPECT().
		GetLatestExchangeRate(gomock.Any(), schema.RateKindFX).
		Return(nil, errors.New("connection refused"))

	rate, err := p.GetRate(context.Background(), "GBP")

	require.NoError(t, err)
	assert.Equal(t, 0.79, rate.Rate)
	assert.True(t, rate.FallbackUsed)
}

func TestRateProvider_ExpiredCacheRefreshedFromStore(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	staleAt := time.Now().Add(-2 * time.Hour)
	freshAt := time.Now().Add(-time.Minute)
	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:fx").
		Return(cachedSnapshotJSON(t, map[string]float64{"GBP": 0.80}, staleAt), nil)
	tm.store.EXPECT().
		GetLatestExchangeRate(gomock.Any(), schema.RateKindFX).
		Return(storedSnapshot(t, schema.RateKindFX, map[string]float64{"GBP": 0.79}, freshAt), nil)
	tm.cache.EXPECT().
		Set(gomock.Any(), "rates:fx", gomock.Any(), gomock.Any()).
		Return(nil)

	rate, err := p.GetRate(context.Background(), "GBP")

	require.NoError(t, err)
	assert.Equal(t, 0.79, rate.Rate)
	assert.False(t, rate.FallbackUsed)
}

func TestRateProvider_NoSnapshotAnywhere(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:fx").
		Return(nil, cache.ErrMiss)
	tm.store.EXPECT().
		GetLatestExchangeRate(gomock.Any(), schema.RateKindFX).
		Return(nil, nil)

	rate, err := p.GetRate(context.Background(), "EUR")

	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
	assert.Nil(t, rate)
}

func TestRateProvider_UnknownCurrency(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:fx").
		Return(cachedSnapshotJSON(t, map[string]float64{"EUR": 0.92}, time.Now()), nil)

	rate, err := p.GetRate(context.Background(), "XTS")

	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
	assert.Nil(t, rate)
}

func TestRateProvider_GetBTCRate(t *testing.T) {
	p, tm := setupTestRates(t, 15*time.Minute)
	defer tm.ctrl.Finish()

	tm.cache.EXPECT().
		Get(gomock.Any(), "rates:btc").
		Return(cachedSnapshotJSON(t, map[string]float64{"USD": 100000.0}, time.Now()), nil)

	rate, err := p.GetBTCRate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 100000.0, rate.Rate)
	assert.False(t, rate.FallbackUsed)
}
