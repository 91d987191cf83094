package schema

import (
	"time"

	"gorm.io/datatypes"
)

// RateKind distinguishes fiat and bitcoin rate snapshots
type RateKind string

const (
	// RateKindFX is a fiat exchange-rate table keyed by currency code
	RateKindFX RateKind = "fx"
	// RateKindBTC is a bitcoin price table keyed by currency code
	RateKindBTC RateKind = "btc"
)

// ExchangeRate represents the exchange_rates table - periodic snapshots of
// the rate tables used to annotate price observations. Snapshots are
// append-only; price rows embed the snapshot they were converted with.
type ExchangeRate struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Kind is the snapshot type (fx, btc)
	Kind RateKind `gorm:"column:kind;not null;type:text;index:idx_exchange_rates_kind_fetched_at,priority:1"`
	// BaseCurrency is the currency the rates are expressed against
	BaseCurrency string `gorm:"column:base_currency;not null;type:text"`
	// Rates is the rate table keyed by currency code
	Rates datatypes.JSON `gorm:"column:rates;type:jsonb"`
	// FetchedAt is when the snapshot was taken
	FetchedAt time.Time `gorm:"column:fetched_at;not null;type:timestamptz;index:idx_exchange_rates_kind_fetched_at,priority:2,sort:desc"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ExchangeRate model
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
