package store

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

// EnsureProductTitleInput holds the fields for resolving a normalized title
// into product and title rows
type EnsureProductTitleInput struct {
	DisplayTitle    string
	NormalizedTitle string
	Slug            string
	Type            schema.ProductType
}

// UpsertVideoGameInput holds the fields for creating or updating one provider listing
type UpsertVideoGameInput struct {
	TitleID      int64
	Provider     domain.Provider
	ExternalID   string
	Name         string
	Platforms    []string
	Genres       []string
	ReleaseDate  *time.Time
	Developer    string
	Publisher    string
	Rating       *float64
	RatingCount  *int64
	Description  string
	ProviderSlug string
	Media        domain.MediaDocument
}

// UpsertTitleSourceInput holds the raw payload retained per (title, provider)
type UpsertTitleSourceInput struct {
	TitleID     int64
	Provider    domain.Provider
	Payload     datatypes.JSON
	PayloadHash string
	FetchedAt   time.Time
}

// UpsertPriceInput holds one price observation keyed by (game, retailer, country)
type UpsertPriceInput struct {
	VideoGameID     int64
	Retailer        string
	CountryCode     string
	Currency        string
	AmountMinor     int64
	Free            bool
	TaxInclusive    bool
	URL             string
	AmountUSDMinor  *int64
	AmountSats      *int64
	FXRateSnapshot  datatypes.JSON
	BTCRateSnapshot datatypes.JSON
	RecordedAt      time.Time
}

// FinishIngestRunInput holds the final counters for a completed or failed run
type FinishIngestRunInput struct {
	Status              schema.RunStatus
	Created             int64
	Updated             int64
	Skipped             int64
	PriceRecordsWritten int64
	ErrorCount          int64
	LastError           string
	FinishedAt          time.Time
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// EnsureProductTitle creates the product and title rows for a normalized
	// title if they do not exist, returning the title either way. The bool
	// reports whether the title row was created by this call.
	EnsureProductTitle(ctx context.Context, input EnsureProductTitleInput) (*schema.VideoGameTitle, bool, error)
	// GetTitleByNormalizedTitle retrieves a title by its normalized dedup key
	GetTitleByNormalizedTitle(ctx context.Context, normalizedTitle string) (*schema.VideoGameTitle, error)
	// GetTitleByAlternateName retrieves a title through the alternate-names
	// side table, walking the alias up to its product's title row
	GetTitleByAlternateName(ctx context.Context, normalizedName string) (*schema.VideoGameTitle, error)
	// AddAlternateName records an additional display title for a product
	AddAlternateName(ctx context.Context, productID int64, name, normalizedName string) error

	// GetVideoGame retrieves a listing by its (provider, external_id) identity
	GetVideoGame(ctx context.Context, provider domain.Provider, externalID string) (*schema.VideoGame, error)
	// UpsertVideoGame creates or updates a listing. The bool reports whether
	// the row was created by this call.
	UpsertVideoGame(ctx context.Context, input UpsertVideoGameInput) (*schema.VideoGame, bool, error)

	// UpsertTitleSource writes the raw payload for a (title, provider) pair,
	// skipping the write when the payload hash is unchanged. The bool reports
	// whether a write happened.
	UpsertTitleSource(ctx context.Context, input UpsertTitleSourceInput) (bool, error)

	// UpsertPrice overwrites the price observation keyed by (game, retailer, country)
	UpsertPrice(ctx context.Context, input UpsertPriceInput) error
	// GetPricesByVideoGameID retrieves all price observations for a listing
	GetPricesByVideoGameID(ctx context.Context, videoGameID int64) ([]schema.VideoGamePrice, error)

	// EnsureSource creates the per-provider source row if it does not exist
	EnsureSource(ctx context.Context, provider domain.Provider, label string) error
	// GetSource retrieves the source row for a provider
	GetSource(ctx context.Context, provider domain.Provider) (*schema.VideoGameSource, error)
	// IncrementSourceItems atomically adjusts the items_count for a provider
	IncrementSourceItems(ctx context.Context, provider domain.Provider, delta int64) error
	// TouchSource records that an ingest run touched a provider
	TouchSource(ctx context.Context, provider domain.Provider, runAt time.Time) error

	// CreateIngestRun inserts the audit row for a starting run
	CreateIngestRun(ctx context.Context, run *schema.IngestRun) error
	// FinishIngestRun records the final counters for a run
	FinishIngestRun(ctx context.Context, runID string, input FinishIngestRunInput) error
	// GetIngestRun retrieves a run by its ULID
	GetIngestRun(ctx context.Context, runID string) (*schema.IngestRun, error)

	// SaveExchangeRate appends a rate snapshot
	SaveExchangeRate(ctx context.Context, rate *schema.ExchangeRate) error
	// GetLatestExchangeRate retrieves the most recent snapshot of a kind
	GetLatestExchangeRate(ctx context.Context, kind schema.RateKind) (*schema.ExchangeRate, error)
}
