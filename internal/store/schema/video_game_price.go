package schema

import (
	"time"

	"gorm.io/datatypes"
)

// VideoGamePrice represents the video_game_prices table - the latest observed
// price for a listing at one retailer in one country. The unique key
// (video_game_id, retailer, country_code) makes re-ingestion overwrite rather
// than append; this table is a snapshot, not a history.
type VideoGamePrice struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// VideoGameID references the priced listing
	VideoGameID int64 `gorm:"column:video_game_id;not null;uniqueIndex:idx_video_game_prices_game_retailer_country,priority:1"`
	// Retailer is the storefront label (e.g., "PlayStation Store")
	Retailer string `gorm:"column:retailer;not null;type:text;uniqueIndex:idx_video_game_prices_game_retailer_country,priority:2"`
	// CountryCode is the lowercase ISO country code the price was observed in
	CountryCode string `gorm:"column:country_code;not null;type:text;uniqueIndex:idx_video_game_prices_game_retailer_country,priority:3"`
	// Currency is the ISO 4217 currency code
	Currency string `gorm:"column:currency;not null;type:text"`
	// AmountMinor is the price in minor currency units (cents, yen). Zero is
	// only stored when Free is set.
	AmountMinor int64 `gorm:"column:amount_minor;not null"`
	// Free marks an explicit free-to-play signal from the provider
	Free bool `gorm:"column:free;not null;default:false"`
	// TaxInclusive indicates whether the provider quotes the price with tax
	TaxInclusive bool `gorm:"column:tax_inclusive;not null;default:false"`
	// URL is the storefront page the price was observed on
	URL string `gorm:"column:url;type:text"`
	// AmountUSDMinor is the price converted to USD cents at the snapshot rate
	AmountUSDMinor *int64 `gorm:"column:amount_usd_minor"`
	// AmountSats is the price converted to satoshis at the snapshot rate
	AmountSats *int64 `gorm:"column:amount_sats"`
	// FXRateSnapshot is the fiat exchange-rate table used for the conversion
	FXRateSnapshot datatypes.JSON `gorm:"column:fx_rate_snapshot;type:jsonb"`
	// BTCRateSnapshot is the bitcoin rate used for the satoshi conversion
	BTCRateSnapshot datatypes.JSON `gorm:"column:btc_rate_snapshot;type:jsonb"`
	// RecordedAt is when this observation was made
	RecordedAt time.Time `gorm:"column:recorded_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	VideoGame VideoGame `gorm:"foreignKey:VideoGameID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the VideoGamePrice model
func (VideoGamePrice) TableName() string {
	return "video_game_prices"
}
