package pricing

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/adapter"
	"github.com/gamedex/gd-indexer/internal/config"
	"github.com/gamedex/gd-indexer/internal/logger"
	"github.com/gamedex/gd-indexer/internal/store"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

// Fetcher pulls fresh rate tables from the public rate APIs and appends
// them to the exchange_rates table. Runs call RefreshAll once at startup;
// stale snapshots are tolerated downstream.
type Fetcher struct {
	http  adapter.HTTPClient
	json  adapter.JSON
	store store.Store
	clock adapter.Clock
	cfg   config.PricingConfig
}

// NewFetcher creates a rate fetcher
func NewFetcher(http adapter.HTTPClient, json adapter.JSON, s store.Store, clock adapter.Clock, cfg config.PricingConfig) *Fetcher {
	return &Fetcher{http: http, json: json, store: s, clock: clock, cfg: cfg}
}

// fxResponse is the open.er-api.com rate table shape
type fxResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// btcResponse is the coingecko simple/price shape
type btcResponse struct {
	Bitcoin map[string]float64 `json:"bitcoin"`
}

// RefreshAll refreshes both rate tables. A failure of one table does not
// block the other; the first error is returned.
func (f *Fetcher) RefreshAll(ctx context.Context) error {
	fxErr := f.RefreshFX(ctx)
	if fxErr != nil {
		logger.WarnCtx(ctx, "fiat rate refresh failed", zap.Error(fxErr))
	}

	btcErr := f.RefreshBTC(ctx)
	if btcErr != nil {
		logger.WarnCtx(ctx, "bitcoin rate refresh failed", zap.Error(btcErr))
	}

	if fxErr != nil {
		return fxErr
	}
	return btcErr
}

// RefreshFX fetches the USD-based fiat rate table and saves a snapshot
func (f *Fetcher) RefreshFX(ctx context.Context) error {
	body, err := f.http.GetBytes(ctx, f.cfg.FXRatesURL, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch fiat rates: %w", err)
	}

	var resp fxResponse
	if err := f.json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode fiat rates: %w", err)
	}
	if resp.Result != "success" || len(resp.Rates) == 0 {
		return fmt.Errorf("fiat rate API returned no usable rates (result=%q)", resp.Result)
	}

	base := resp.BaseCode
	if base == "" {
		base = "USD"
	}

	return f.save(ctx, schema.RateKindFX, base, resp.Rates)
}

// RefreshBTC fetches the bitcoin USD price and saves a snapshot
func (f *Fetcher) RefreshBTC(ctx context.Context) error {
	url := f.cfg.BTCRatesURL
	if !strings.Contains(url, "?") {
		url += "?ids=bitcoin&vs_currencies=usd"
	}

	body, err := f.http.GetBytes(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch bitcoin rate: %w", err)
	}

	var resp btcResponse
	if err := f.json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode bitcoin rate: %w", err)
	}

	rates := make(map[string]float64, len(resp.Bitcoin))
	for currency, rate := range resp.Bitcoin {
		rates[strings.ToUpper(currency)] = rate
	}
	if rates["USD"] <= 0 {
		return fmt.Errorf("bitcoin rate API returned no USD price")
	}

	return f.save(ctx, schema.RateKindBTC, "BTC", rates)
}

func (f *Fetcher) save(ctx context.Context, kind schema.RateKind, base string, rates map[string]float64) error {
	raw, err := f.json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("failed to encode %s rate table: %w", kind, err)
	}

	snapshot := &schema.ExchangeRate{
		Kind:         kind,
		BaseCurrency: base,
		Rates:        datatypes.JSON(raw),
		FetchedAt:    f.clock.Now(),
	}
	if err := f.store.SaveExchangeRate(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save %s rate snapshot: %w", kind, err)
	}

	logger.InfoCtx(ctx, "rate snapshot saved",
		zap.String("kind", string(kind)),
		zap.Int("currencies", len(rates)),
	)
	return nil
}
