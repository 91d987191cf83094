// Package pricing converts and persists price observations. Conversion
// rates come from periodic snapshots in the exchange_rates table, read
// through the shared cache so a run does not hammer the store once per
// item.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/cache"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/store"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

const (
	fxCacheKey  = "rates:fx"
	btcCacheKey = "rates:btc"

	// Cache entries outlive the freshness TTL so an expired entry can
	// still serve as a fallback when the store is unreachable.
	cacheRetention = 24 * time.Hour
)

// Rate is one conversion rate against USD. FallbackUsed marks rates older
// than the freshness TTL; callers record them but log the staleness.
type Rate struct {
	Rate         float64
	AsOf         time.Time
	FallbackUsed bool
}

// RateProvider serves conversion rates for price annotation
//
//go:generate mockgen -source=rates.go -destination=../mocks/pricing_rates.go -package=mocks -mock_names=RateProvider=MockRateProvider
type RateProvider interface {
	// GetRate returns how many units of currency one USD buys
	GetRate(ctx context.Context, currency string) (*Rate, error)
	// GetBTCRate returns the USD price of one bitcoin
	GetBTCRate(ctx context.Context) (*Rate, error)
}

// rateSnapshot is the cached form of one exchange_rates row
type rateSnapshot struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// storeRateProvider reads exchange_rates through the cache collaborator
type storeRateProvider struct {
	store store.Store
	cache cache.Cache
	json  adapter.JSON
	clock adapter.Clock
	ttl   time.Duration
}

// NewStoreRateProvider creates a store-backed rate provider. Snapshots
// younger than ttl are served from cache without touching the store.
func NewStoreRateProvider(s store.Store, c cache.Cache, j adapter.JSON, clock adapter.Clock, ttl time.Duration) RateProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &storeRateProvider{store: s, cache: c, json: j, clock: clock, ttl: ttl}
}

func (p *storeRateProvider) GetRate(ctx context.Context, currency string) (*Rate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "USD" {
		return &Rate{Rate: 1, AsOf: p.clock.Now()}, nil
	}

	snap, err := p.loadSnapshot(ctx, fxCacheKey, schema.RateKindFX)
	if err != nil {
		return nil, err
	}

	rate, ok := snap.Rates[currency]
	if !ok || rate <= 0 {
		return nil, fmt.Errorf("no rate for %s: %w", currency, domain.ErrRateUnavailable)
	}

	return p.rateFrom(snap, rate), nil
}

func (p *storeRateProvider) GetBTCRate(ctx context.Context) (*Rate, error) {
	snap, err := p.loadSnapshot(ctx, btcCacheKey, schema.RateKindBTC)
	if err != nil {
		return nil, err
	}

	rate, ok := snap.Rates["USD"]
	if !ok || rate <= 0 {
		return nil, fmt.Errorf("no USD bitcoin rate: %w", domain.ErrRateUnavailable)
	}

	return p.rateFrom(snap, rate), nil
}

func (p *storeRateProvider) rateFrom(snap *rateSnapshot, rate float64) *Rate {
	return &Rate{
		Rate:         rate,
		AsOf:         snap.FetchedAt,
		FallbackUsed: p.clock.Since(snap.FetchedAt) > p.ttl,
	}
}

// loadSnapshot serves the snapshot from cache when fresh, refreshing from
// the store otherwise. A store failure falls back to the expired cache
// entry rather than failing the price write.
func (p *storeRateProvider) loadSnapshot(ctx context.Context, key string, kind schema.RateKind) (*rateSnapshot, error) {
	var stale *rateSnapshot
	if b, err := p.cache.Get(ctx, key); err == nil {
		var snap rateSnapshot
		if err := p.json.Unmarshal(b, &snap); err == nil {
			if p.clock.Since(snap.FetchedAt) <= p.ttl {
				return &snap, nil
			}
			stale = &snap
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.WarnCtx(ctx, "rate cache read failed", zap.String("key", key), zap.Error(err))
	}

	rec, err := p.store.GetLatestExchangeRate(ctx, kind)
	if err != nil || rec == nil {
		if stale != nil {
			logger.WarnCtx(ctx, "serving expired rate snapshot",
				zap.String("kind", string(kind)),
				zap.Time("fetched_at", stale.FetchedAt),
				zap.Error(err),
			)
			return stale, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s rates: %w", kind, err)
		}
		return nil, fmt.Errorf("no %s rate snapshot: %w", kind, domain.ErrRateUnavailable)
	}

	snap := &rateSnapshot{Base: rec.BaseCurrency, FetchedAt: rec.FetchedAt}
	if err := p.json.Unmarshal(rec.Rates, &snap.Rates); err != nil {
		return nil, fmt.Errorf("failed to decode %s rate table: %w", kind, err)
	}

	if b, err := p.json.Marshal(snap); err == nil {
		if err := p.cache.Set(ctx, key, b, cacheRetention); err != nil {
			logger.WarnCtx(ctx, "rate cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return snap, nil
}
