package store

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestProductTitle(display, normalized, slug string) EnsureProductTitleInput {
	return EnsureProductTitleInput{
		DisplayTitle:    display,
		NormalizedTitle: normalized,
		Slug:            slug,
		Type:            schema.ProductTypeVideoGame,
	}
}

func buildTestVideoGame(titleID int64, provider domain.Provider, externalID, name string) UpsertVideoGameInput {
	return UpsertVideoGameInput{
		TitleID:    titleID,
		Provider:   provider,
		ExternalID: externalID,
		Name:       name,
		Platforms:  []string{"PS5"},
		Genres:     []string{"Action"},
		Developer:  "FromSoftware",
		Publisher:  "Bandai Namco",
		Media: domain.MediaDocument{
			Images: []domain.MediaImage{
				{URL: "https://img.example/cover.png", Role: domain.MediaRoleCover},
			},
		},
	}
}

func buildTestPrice(gameID int64, retailer, country, currency string, amountMinor int64) UpsertPriceInput {
	return UpsertPriceInput{
		VideoGameID: gameID,
		Retailer:    retailer,
		CountryCode: country,
		Currency:    currency,
		AmountMinor: amountMinor,
		URL:         "https://store.example/product",
		RecordedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

// =============================================================================
// Test: EnsureProductTitle
// =============================================================================

func testEnsureProductTitle(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("creates product and title for a new normalized title", func(t *testing.T) {
		title, created, err := store.EnsureProductTitle(ctx,
			buildTestProductTitle("Elden Ring", "eldenring", "elden-ring"))
		require.NoError(t, err)
		require.NotNil(t, title)
		assert.True(t, created)
		assert.NotZero(t, title.ID)
		assert.NotZero(t, title.ProductID)
		assert.Equal(t, "Elden Ring", title.Title)
		assert.Equal(t, "eldenring", title.NormalizedTitle)
	})

	t.Run("second call with same normalized title returns existing row", func(t *testing.T) {
		first, created, err := store.EnsureProductTitle(ctx,
			buildTestProductTitle("HELLDIVERS 2", "helldivers2", "helldivers-2"))
		require.NoError(t, err)
		require.True(t, created)

		// Display title differs but normalizes to the same key
		second, created, err := store.EnsureProductTitle(ctx,
			buildTestProductTitle("Helldivers™ 2", "helldivers2", "helldivers-2"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.ProductID, second.ProductID)
	})

	t.Run("lookup by normalized title", func(t *testing.T) {
		title, err := store.GetTitleByNormalizedTitle(ctx, "eldenring")
		require.NoError(t, err)
		require.NotNil(t, title)
		assert.Equal(t, "Elden Ring", title.Title)

		missing, err := store.GetTitleByNormalizedTitle(ctx, "nosuchtitle")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("alternate names are recorded once per product", func(t *testing.T) {
		title, _, err := store.EnsureProductTitle(ctx,
			buildTestProductTitle("Ghost of Tsushima", "ghostoftsushima", "ghost-of-tsushima"))
		require.NoError(t, err)

		require.NoError(t, store.AddAlternateName(ctx, title.ProductID, "Ghost of Tsushima Director's Cut", "ghostoftsushimadirectorscut"))
		// Same normalized name again is a no-op, not an error
		require.NoError(t, store.AddAlternateName(ctx, title.ProductID, "Ghost of Tsushima: Director's Cut", "ghostoftsushimadirectorscut"))
	})

	t.Run("lookup by alternate name walks up to the product's title", func(t *testing.T) {
		title, _, err := store.EnsureProductTitle(ctx,
			buildTestProductTitle("Final Fantasy VII Remake", "finalfantasyviiremake", "final-fantasy-vii-remake"))
		require.NoError(t, err)
		require.NoError(t, store.AddAlternateName(ctx, title.ProductID, "FF7R", "ff7r"))

		found, err := store.GetTitleByAlternateName(ctx, "ff7r")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, title.ID, found.ID)
		assert.Equal(t, title.ProductID, found.ProductID)

		missing, err := store.GetTitleByAlternateName(ctx, "nosuchalias")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

// =============================================================================
// Test: UpsertVideoGame
// =============================================================================

func testUpsertVideoGame(t *testing.T, store Store) {
	ctx := context.Background()

	title, _, err := store.EnsureProductTitle(ctx,
		buildTestProductTitle("Elden Ring", "eldenring", "elden-ring"))
	require.NoError(t, err)

	t.Run("creates a new listing", func(t *testing.T) {
		game, created, err := store.UpsertVideoGame(ctx,
			buildTestVideoGame(title.ID, domain.ProviderPlayStation, "UP0700-PPSA01234", "ELDEN RING"))
		require.NoError(t, err)
		require.NotNil(t, game)
		assert.True(t, created)
		assert.NotZero(t, game.ID)
		assert.Equal(t, []string{"PS5"}, game.Platforms)
	})

	t.Run("same provider identity updates in place", func(t *testing.T) {
		first, created, err := store.UpsertVideoGame(ctx,
			buildTestVideoGame(title.ID, domain.ProviderSteam, "1245620", "ELDEN RING"))
		require.NoError(t, err)
		require.True(t, created)

		update := buildTestVideoGame(title.ID, domain.ProviderSteam, "1245620", "ELDEN RING Shadow of the Erdtree Edition")
		update.Platforms = []string{"PC"}
		second, created, err := store.UpsertVideoGame(ctx, update)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "ELDEN RING Shadow of the Erdtree Edition", second.Name)
		assert.Equal(t, []string{"PC"}, second.Platforms)
	})

	t.Run("same external id under different providers is two listings", func(t *testing.T) {
		psGame, created, err := store.UpsertVideoGame(ctx,
			buildTestVideoGame(title.ID, domain.ProviderPlayStation, "shared-id", "Elden Ring"))
		require.NoError(t, err)
		require.True(t, created)

		igdbGame, created, err := store.UpsertVideoGame(ctx,
			buildTestVideoGame(title.ID, domain.ProviderIGDB, "shared-id", "Elden Ring"))
		require.NoError(t, err)
		require.True(t, created)
		assert.NotEqual(t, psGame.ID, igdbGame.ID)
	})

	t.Run("lookup by provider identity", func(t *testing.T) {
		game, err := store.GetVideoGame(ctx, domain.ProviderPlayStation, "UP0700-PPSA01234")
		require.NoError(t, err)
		require.NotNil(t, game)
		assert.Equal(t, "ELDEN RING", game.Name)

		missing, err := store.GetVideoGame(ctx, domain.ProviderSteam, "0")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

// =============================================================================
// Test: UpsertTitleSource
// =============================================================================

func testUpsertTitleSource(t *testing.T, store Store) {
	ctx := context.Background()

	title, _, err := store.EnsureProductTitle(ctx,
		buildTestProductTitle("Stray", "stray", "stray"))
	require.NoError(t, err)

	input := UpsertTitleSourceInput{
		TitleID:     title.ID,
		Provider:    domain.ProviderSteam,
		Payload:     datatypes.JSON(`{"name":"Stray","price":2999}`),
		PayloadHash: "hash-v1",
		FetchedAt:   time.Now().UTC(),
	}

	written, err := store.UpsertTitleSource(ctx, input)
	require.NoError(t, err)
	assert.True(t, written, "first payload should be written")

	written, err = store.UpsertTitleSource(ctx, input)
	require.NoError(t, err)
	assert.False(t, written, "unchanged hash should skip the write")

	input.Payload = datatypes.JSON(`{"name":"Stray","price":1999}`)
	input.PayloadHash = "hash-v2"
	written, err = store.UpsertTitleSource(ctx, input)
	require.NoError(t, err)
	assert.True(t, written, "changed hash should be written")
}

// =============================================================================
// Test: UpsertPrice
// =============================================================================

func testUpsertPrice(t *testing.T, store Store) {
	ctx := context.Background()

	title, _, err := store.EnsureProductTitle(ctx,
		buildTestProductTitle("Elden Ring", "eldenring", "elden-ring"))
	require.NoError(t, err)
	game, _, err := store.UpsertVideoGame(ctx,
		buildTestVideoGame(title.ID, domain.ProviderPlayStation, "UP0700-PPSA01234", "ELDEN RING"))
	require.NoError(t, err)

	t.Run("re-observing the same key overwrites instead of appending", func(t *testing.T) {
		require.NoError(t, store.UpsertPrice(ctx,
			buildTestPrice(game.ID, domain.RetailerLabel(domain.ProviderPlayStation), "us", "USD", 5999)))
		require.NoError(t, store.UpsertPrice(ctx,
			buildTestPrice(game.ID, domain.RetailerLabel(domain.ProviderPlayStation), "us", "USD", 4999)))

		prices, err := store.GetPricesByVideoGameID(ctx, game.ID)
		require.NoError(t, err)
		require.Len(t, prices, 1)
		assert.Equal(t, int64(4999), prices[0].AmountMinor)
		assert.Equal(t, "USD", prices[0].Currency)
	})

	t.Run("different countries are separate rows", func(t *testing.T) {
		require.NoError(t, store.UpsertPrice(ctx,
			buildTestPrice(game.ID, domain.RetailerLabel(domain.ProviderPlayStation), "jp", "JPY", 9240)))

		prices, err := store.GetPricesByVideoGameID(ctx, game.ID)
		require.NoError(t, err)
		require.Len(t, prices, 2)
	})
}

// =============================================================================
// Test: Sources
// =============================================================================

func testSources(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.EnsureSource(ctx, domain.ProviderSteam, domain.RetailerLabel(domain.ProviderSteam)))
	// Idempotent
	require.NoError(t, store.EnsureSource(ctx, domain.ProviderSteam, domain.RetailerLabel(domain.ProviderSteam)))

	require.NoError(t, store.IncrementSourceItems(ctx, domain.ProviderSteam, 3))
	require.NoError(t, store.IncrementSourceItems(ctx, domain.ProviderSteam, 2))

	runAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.TouchSource(ctx, domain.ProviderSteam, runAt))

	source, err := store.GetSource(ctx, domain.ProviderSteam)
	require.NoError(t, err)
	require.NotNil(t, source)
	assert.Equal(t, int64(5), source.ItemsCount)
	assert.Equal(t, domain.RetailerLabel(domain.ProviderSteam), source.Label)
	require.NotNil(t, source.LastRunAt)

	missing, err := store.GetSource(ctx, domain.ProviderIGDB)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// Test: IngestRuns
// =============================================================================

func testIngestRuns(t *testing.T, store Store) {
	ctx := context.Background()

	run := &schema.IngestRun{
		ID:        ulid.Make().String(),
		Provider:  domain.ProviderPlayStation,
		Regions:   []string{"us", "jp"},
		Status:    schema.RunStatusRunning,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateIngestRun(ctx, run))

	got, err := store.GetIngestRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema.RunStatusRunning, got.Status)
	assert.Equal(t, []string{"us", "jp"}, got.Regions)
	assert.Nil(t, got.FinishedAt)

	finish := FinishIngestRunInput{
		Status:              schema.RunStatusCompleted,
		Created:             10,
		Updated:             4,
		Skipped:             2,
		PriceRecordsWritten: 14,
		ErrorCount:          1,
		LastError:           "fetch item 42: malformed payload",
		FinishedAt:          time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.FinishIngestRun(ctx, run.ID, finish))

	got, err = store.GetIngestRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema.RunStatusCompleted, got.Status)
	assert.Equal(t, int64(10), got.Created)
	assert.Equal(t, int64(14), got.PriceRecordsWritten)
	require.NotNil(t, got.FinishedAt)

	err = store.FinishIngestRun(ctx, "no-such-run", finish)
	assert.Error(t, err)
}

// =============================================================================
// Test: ExchangeRates
// =============================================================================

func testExchangeRates(t *testing.T, store Store) {
	ctx := context.Background()

	missing, err := store.GetLatestExchangeRate(ctx, schema.RateKindBTC)
	require.NoError(t, err)
	assert.Nil(t, missing)

	older := &schema.ExchangeRate{
		Kind:         schema.RateKindFX,
		BaseCurrency: "USD",
		Rates:        datatypes.JSON(`{"USD":1,"JPY":148.2}`),
		FetchedAt:    time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second),
	}
	newer := &schema.ExchangeRate{
		Kind:         schema.RateKindFX,
		BaseCurrency: "USD",
		Rates:        datatypes.JSON(`{"USD":1,"JPY":149.9}`),
		FetchedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveExchangeRate(ctx, older))
	require.NoError(t, store.SaveExchangeRate(ctx, newer))

	latest, err := store.GetLatestExchangeRate(ctx, schema.RateKindFX)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
}

// RunStoreTests runs the full store suite against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"EnsureProductTitle", testEnsureProductTitle},
		{"UpsertVideoGame", testUpsertVideoGame},
		{"UpsertTitleSource", testUpsertTitleSource},
		{"UpsertPrice", testUpsertPrice},
		{"Sources", testSources},
		{"IngestRuns", testIngestRuns},
		{"ExchangeRates", testExchangeRates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
