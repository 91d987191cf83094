package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/gamedex/gd-indexer/internal/config"
	"github.com/gamedex/gd-indexer/internal/domain"
	"github.com/gamedex/gd-indexer/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// NewDB opens a gorm connection from config. When a read replica host is
// configured, reads are routed to it through dbresolver; refetch paths that
// must see their own writes use the dbresolver.Write clause explicitly.
func NewDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.ReadHost != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.ReadDSN())},
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to register read replica: %w", err)
		}
	}

	if err := ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, err
	}

	return db, nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// EnsureProductTitle creates the product and title rows for a normalized
// title if they do not exist, returning the title either way.
//
// Creation uses ON CONFLICT DO NOTHING on the normalized_title unique index
// followed by a refetch, so two workers racing on the same title both end up
// attached to the same row. A refetch miss after a conflict is reported as
// ErrResolutionConflict so the caller can retry.
func (s *pgStore) EnsureProductTitle(ctx context.Context, input EnsureProductTitleInput) (*schema.VideoGameTitle, bool, error) {
	var title schema.VideoGameTitle
	var created bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product := schema.Product{
			Type:            input.Type,
			DisplayTitle:    input.DisplayTitle,
			NormalizedTitle: input.NormalizedTitle,
			Slug:            input.Slug,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "normalized_title"}},
			DoNothing: true,
		}).Clauses(clause.Returning{Columns: []clause.Column{}}).
			Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		// If product.ID is 0, another worker created the row first; fetch it
		if product.ID == 0 {
			if err := tx.Where("normalized_title = ?", input.NormalizedTitle).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product refetch after conflict: %w", domain.ErrResolutionConflict)
				}
				return fmt.Errorf("failed to get existing product: %w", err)
			}
		}

		title = schema.VideoGameTitle{
			ProductID:       product.ID,
			Title:           input.DisplayTitle,
			NormalizedTitle: input.NormalizedTitle,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "normalized_title"}},
			DoNothing: true,
		}).Clauses(clause.Returning{Columns: []clause.Column{}}).
			Create(&title).Error; err != nil {
			return fmt.Errorf("failed to create title: %w", err)
		}

		if title.ID == 0 {
			if err := tx.Where("normalized_title = ?", input.NormalizedTitle).First(&title).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("title refetch after conflict: %w", domain.ErrResolutionConflict)
				}
				return fmt.Errorf("failed to get existing title: %w", err)
			}
			return nil
		}

		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &title, created, nil
}

// GetTitleByNormalizedTitle retrieves a title by its normalized dedup key
func (s *pgStore) GetTitleByNormalizedTitle(ctx context.Context, normalizedTitle string) (*schema.VideoGameTitle, error) {
	var title schema.VideoGameTitle
	err := s.db.WithContext(ctx).Where("normalized_title = ?", normalizedTitle).First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get title: %w", err)
	}
	return &title, nil
}

// GetTitleByAlternateName retrieves a title through the alternate-names side
// table. The alias row carries the product, and the product's title row is
// what resolution hands back.
func (s *pgStore) GetTitleByAlternateName(ctx context.Context, normalizedName string) (*schema.VideoGameTitle, error) {
	var title schema.VideoGameTitle
	err := s.db.WithContext(ctx).
		Joins("JOIN alternate_names ON alternate_names.product_id = video_game_titles.product_id").
		Where("alternate_names.normalized_name = ?", normalizedName).
		Order("video_game_titles.id ASC").
		First(&title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get title by alternate name: %w", err)
	}
	return &title, nil
}

// AddAlternateName records an additional display title for a product.
// Duplicates for the same product are silently skipped.
func (s *pgStore) AddAlternateName(ctx context.Context, productID int64, name, normalizedName string) error {
	alt := schema.AlternateName{
		ProductID:      productID,
		Name:           name,
		NormalizedName: normalizedName,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "normalized_name"}},
		DoNothing: true,
	}).Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(&alt).Error
	if err != nil {
		return fmt.Errorf("failed to add alternate name: %w", err)
	}
	return nil
}

// GetVideoGame retrieves a listing by its (provider, external_id) identity
func (s *pgStore) GetVideoGame(ctx context.Context, provider domain.Provider, externalID string) (*schema.VideoGame, error) {
	var game schema.VideoGame
	err := s.db.WithContext(ctx).
		Where("provider = ? AND external_id = ?", string(provider), externalID).
		First(&game).Error
	if err == nil {
		return &game, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get video game: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	err = s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("provider = ? AND external_id = ?", string(provider), externalID).
		First(&game).Error
	if err == nil {
		return &game, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get video game: %w", err)
}

// UpsertVideoGame creates or updates a listing. Creation and update are
// distinguished with ON CONFLICT DO NOTHING plus an explicit update of the
// mutable columns when the row already existed.
func (s *pgStore) UpsertVideoGame(ctx context.Context, input UpsertVideoGameInput) (*schema.VideoGame, bool, error) {
	var game schema.VideoGame
	var created bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game = schema.VideoGame{
			TitleID:      input.TitleID,
			Provider:     input.Provider,
			ExternalID:   input.ExternalID,
			Name:         input.Name,
			Platforms:    input.Platforms,
			Genres:       input.Genres,
			ReleaseDate:  input.ReleaseDate,
			Developer:    input.Developer,
			Publisher:    input.Publisher,
			Rating:       input.Rating,
			RatingCount:  input.RatingCount,
			Description:  input.Description,
			ProviderSlug: input.ProviderSlug,
			Media:        input.Media,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "external_id"}},
			DoNothing: true,
		}).Clauses(clause.Returning{Columns: []clause.Column{}}).
			Create(&game).Error; err != nil {
			return fmt.Errorf("failed to create video game: %w", err)
		}

		if game.ID != 0 {
			created = true
			return nil
		}

		// Row already existed; update the mutable columns in place
		var existing schema.VideoGame
		if err := tx.Where("provider = ? AND external_id = ?", string(input.Provider), input.ExternalID).
			First(&existing).Error; err != nil {
			return fmt.Errorf("failed to get existing video game: %w", err)
		}

		existing.TitleID = input.TitleID
		existing.Name = input.Name
		existing.Platforms = input.Platforms
		existing.Genres = input.Genres
		existing.ReleaseDate = input.ReleaseDate
		existing.Developer = input.Developer
		existing.Publisher = input.Publisher
		existing.Rating = input.Rating
		existing.RatingCount = input.RatingCount
		existing.Description = input.Description
		existing.ProviderSlug = input.ProviderSlug
		existing.Media = input.Media
		existing.UpdatedAt = time.Now()

		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update video game: %w", err)
		}

		game = existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return &game, created, nil
}

// UpsertTitleSource writes the raw payload for a (title, provider) pair.
// The write is skipped when the stored payload hash matches, so unchanged
// payloads do not churn updated_at.
func (s *pgStore) UpsertTitleSource(ctx context.Context, input UpsertTitleSourceInput) (bool, error) {
	var written bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing schema.VideoGameTitleSource
		err := tx.Where("title_id = ? AND provider = ?", input.TitleID, string(input.Provider)).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get title source: %w", err)
		}
		if err == nil && existing.PayloadHash == input.PayloadHash {
			return nil
		}

		source := schema.VideoGameTitleSource{
			TitleID:     input.TitleID,
			Provider:    input.Provider,
			Payload:     input.Payload,
			PayloadHash: input.PayloadHash,
			FetchedAt:   input.FetchedAt,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "payload_hash", "fetched_at", "updated_at"}),
		}).Create(&source).Error; err != nil {
			return fmt.Errorf("failed to upsert title source: %w", err)
		}

		written = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return written, nil
}

// UpsertPrice overwrites the price observation keyed by (game, retailer,
// country). One row per key; re-ingestion replaces, never appends.
func (s *pgStore) UpsertPrice(ctx context.Context, input UpsertPriceInput) error {
	price := schema.VideoGamePrice{
		VideoGameID:     input.VideoGameID,
		Retailer:        input.Retailer,
		CountryCode:     input.CountryCode,
		Currency:        input.Currency,
		AmountMinor:     input.AmountMinor,
		Free:            input.Free,
		TaxInclusive:    input.TaxInclusive,
		URL:             input.URL,
		AmountUSDMinor:  input.AmountUSDMinor,
		AmountSats:      input.AmountSats,
		FXRateSnapshot:  input.FXRateSnapshot,
		BTCRateSnapshot: input.BTCRateSnapshot,
		RecordedAt:      input.RecordedAt,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "video_game_id"}, {Name: "retailer"}, {Name: "country_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"currency", "amount_minor", "free", "tax_inclusive", "url",
			"amount_usd_minor", "amount_sats", "fx_rate_snapshot", "btc_rate_snapshot",
			"recorded_at", "updated_at",
		}),
	}).Create(&price).Error
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// GetPricesByVideoGameID retrieves all price observations for a listing
func (s *pgStore) GetPricesByVideoGameID(ctx context.Context, videoGameID int64) ([]schema.VideoGamePrice, error) {
	var prices []schema.VideoGamePrice
	err := s.db.WithContext(ctx).
		Where("video_game_id = ?", videoGameID).
		Order("retailer ASC, country_code ASC").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get prices: %w", err)
	}
	return prices, nil
}

// EnsureSource creates the per-provider source row if it does not exist
func (s *pgStore) EnsureSource(ctx context.Context, provider domain.Provider, label string) error {
	source := schema.VideoGameSource{
		Provider: provider,
		Label:    label,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}},
		DoNothing: true,
	}).Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(&source).Error
	if err != nil {
		return fmt.Errorf("failed to ensure source: %w", err)
	}
	return nil
}

// GetSource retrieves the source row for a provider
func (s *pgStore) GetSource(ctx context.Context, provider domain.Provider) (*schema.VideoGameSource, error) {
	var source schema.VideoGameSource
	err := s.db.WithContext(ctx).Where("provider = ?", string(provider)).First(&source).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &source, nil
}

// IncrementSourceItems atomically adjusts the items_count for a provider.
// The increment is a single SQL expression, never read-modify-write.
func (s *pgStore) IncrementSourceItems(ctx context.Context, provider domain.Provider, delta int64) error {
	err := s.db.WithContext(ctx).Model(&schema.VideoGameSource{}).
		Where("provider = ?", string(provider)).
		Update("items_count", gorm.Expr("items_count + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("failed to increment source items: %w", err)
	}
	return nil
}

// TouchSource records that an ingest run touched a provider
func (s *pgStore) TouchSource(ctx context.Context, provider domain.Provider, runAt time.Time) error {
	err := s.db.WithContext(ctx).Model(&schema.VideoGameSource{}).
		Where("provider = ?", string(provider)).
		Update("last_run_at", runAt).Error
	if err != nil {
		return fmt.Errorf("failed to touch source: %w", err)
	}
	return nil
}

// CreateIngestRun inserts the audit row for a starting run
func (s *pgStore) CreateIngestRun(ctx context.Context, run *schema.IngestRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create ingest run: %w", err)
	}
	return nil
}

// FinishIngestRun records the final counters for a run
func (s *pgStore) FinishIngestRun(ctx context.Context, runID string, input FinishIngestRunInput) error {
	updates := map[string]interface{}{
		"status":                input.Status,
		"created":               input.Created,
		"updated":               input.Updated,
		"skipped":               input.Skipped,
		"price_records_written": input.PriceRecordsWritten,
		"error_count":           input.ErrorCount,
		"last_error":            input.LastError,
		"finished_at":           input.FinishedAt,
	}

	result := s.db.WithContext(ctx).Model(&schema.IngestRun{}).
		Where("id = ?", runID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to finish ingest run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ingest run not found: %s", runID)
	}
	return nil
}

// GetIngestRun retrieves a run by its ULID
func (s *pgStore) GetIngestRun(ctx context.Context, runID string) (*schema.IngestRun, error) {
	var run schema.IngestRun
	err := s.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error
	if err == nil {
		return &run, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get ingest run: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	// Replica can lag behind primary; retry on primary before returning nil.
	err = s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", runID).
		First(&run).Error
	if err == nil {
		return &run, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get ingest run: %w", err)
}

// SaveExchangeRate appends a rate snapshot
func (s *pgStore) SaveExchangeRate(ctx context.Context, rate *schema.ExchangeRate) error {
	if err := s.db.WithContext(ctx).Create(rate).Error; err != nil {
		return fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return nil
}

// GetLatestExchangeRate retrieves the most recent snapshot of a kind
func (s *pgStore) GetLatestExchangeRate(ctx context.Context, kind schema.RateKind) (*schema.ExchangeRate, error) {
	var rate schema.ExchangeRate
	err := s.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Order("fetched_at DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest exchange rate: %w", err)
	}
	return &rate, nil
}
