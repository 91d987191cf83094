package pricing

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/store"
)

// PriceObservation is one quote observed for a listing in one region
type PriceObservation struct {
	VideoGameID int64
	Provider    domain.Provider
	Region      string
	Quote       *domain.PriceQuote
}

// Writer validates, converts and persists price observations. Conversion
// is best effort: a missing rate leaves the converted columns null but
// the observed price is still written.
type Writer struct {
	store store.Store
	rates RateProvider
	json  adapter.JSON
	clock adapter.Clock
}

// NewWriter creates a price writer
func NewWriter(s store.Store, rates RateProvider, json adapter.JSON, clock adapter.Clock) *Writer {
	return &Writer{store: s, rates: rates, json: json, clock: clock}
}

// rateSnapshotDoc is what gets embedded in the price row's snapshot columns
type rateSnapshotDoc struct {
	Currency     string    `json:"currency"`
	Rate         float64   `json:"rate"`
	AsOf         time.Time `json:"as_of"`
	FallbackUsed bool      `json:"fallback_used,omitempty"`
}

// Upsert writes one observation under the (game, retailer, country) key.
// Quotes without a usable amount are dropped with a warning; zero amounts
// are accepted only with an explicit free signal. The bool reports
// whether a row was written.
func (w *Writer) Upsert(ctx context.Context, obs PriceObservation) (bool, error) {
	q := obs.Quote
	if !q.HasAmount() {
		logger.WarnCtx(ctx, "dropping price without usable amount",
			zap.Int64("video_game_id", obs.VideoGameID),
			zap.String("provider", string(obs.Provider)),
			zap.String("region", obs.Region),
		)
		return false, nil
	}

	recordedAt := q.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = w.clock.Now()
	}

	input := store.UpsertPriceInput{
		VideoGameID:  obs.VideoGameID,
		Retailer:     domain.RetailerLabel(obs.Provider),
		CountryCode:  strings.ToLower(domain.RegionCountry(obs.Region)),
		Currency:     strings.ToUpper(q.Currency),
		AmountMinor:  *q.AmountMinor,
		Free:         q.Free,
		TaxInclusive: q.TaxInclusive,
		URL:          q.URL,
		RecordedAt:   recordedAt,
	}

	w.convert(ctx, &input)

	if err := w.store.UpsertPrice(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}

// convert annotates the input with USD and satoshi amounts plus the rate
// snapshots used. Failures only log; the unconverted price still lands.
func (w *Writer) convert(ctx context.Context, in *store.UpsertPriceInput) {
	if in.Free && in.AmountMinor == 0 {
		zeroUSD, zeroSats := int64(0), int64(0)
		in.AmountUSDMinor = &zeroUSD
		in.AmountSats = &zeroSats
		return
	}

	fx, err := w.rates.GetRate(ctx, in.Currency)
	if err != nil {
		logger.WarnCtx(ctx, "price stored without USD conversion",
			zap.String("currency", in.Currency),
			zap.Error(err),
		)
		return
	}
	if fx.FallbackUsed {
		logger.WarnCtx(ctx, "converting with stale fiat rate",
			zap.String("currency", in.Currency),
			zap.Time("as_of", fx.AsOf),
		)
	}

	major := float64(in.AmountMinor) / math.Pow10(currencyExponent(in.Currency))
	usd := major / fx.Rate
	usdMinor := int64(math.Round(usd * 100))
	in.AmountUSDMinor = &usdMinor
	in.FXRateSnapshot = w.snapshotJSON(ctx, in.Currency, fx)

	btc, err := w.rates.GetBTCRate(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "price stored without satoshi conversion", zap.Error(err))
		return
	}
	if btc.FallbackUsed {
		logger.WarnCtx(ctx, "converting with stale bitcoin rate", zap.Time("as_of", btc.AsOf))
	}

	sats := int64(math.Round(usd / btc.Rate * 1e8))
	in.AmountSats = &sats
	in.BTCRateSnapshot = w.snapshotJSON(ctx, "USD", btc)
}

func (w *Writer) snapshotJSON(ctx context.Context, currency string, r *Rate) datatypes.JSON {
	doc := rateSnapshotDoc{
		Currency:     currency,
		Rate:         r.Rate,
		AsOf:         r.AsOf,
		FallbackUsed: r.FallbackUsed,
	}
	b, err := w.json.Marshal(doc)
	if err != nil {
		logger.WarnCtx(ctx, "failed to encode rate snapshot", zap.Error(err))
		return nil
	}
	return datatypes.JSON(b)
}

// zeroDecimalCurrencies are ISO 4217 currencies quoted without minor units
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {}, "KRW": {}, "VND": {}, "CLP": {}, "ISK": {},
}

// threeDecimalCurrencies use a thousandth as the minor unit
var threeDecimalCurrencies = map[string]struct{}{
	"BHD": {}, "KWD": {}, "OMR": {}, "JOD": {}, "TND": {},
}

func currencyExponent(currency string) int {
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		return 0
	}
	if _, ok := threeDecimalCurrencies[currency]; ok {
		return 3
	}
	return 2
}
