package domain

import (
	"strings"
	"time"
)

// Provider identifies an upstream catalog/pricing source
type Provider string

const (
	// ProviderPlayStation represents the PlayStation Store GraphQL API
	ProviderPlayStation Provider = "ps-store"
	// ProviderSteam represents the Steam storefront appdetails API
	ProviderSteam Provider = "steam-store"
	// ProviderIGDB represents local IGDB dump files
	ProviderIGDB Provider = "igdb"
)

// IsValidProvider checks if a provider key is one we know how to ingest
func IsValidProvider(p Provider) bool {
	return p == ProviderPlayStation || p == ProviderSteam || p == ProviderIGDB
}

// ProductType classifies a product family. Only video games are ingested
// by this pipeline, but the column exists so the catalog can grow.
type ProductType string

const (
	ProductTypeVideoGame ProductType = "video_game"
)

// MediaRole tags a media entry with its catalog purpose
type MediaRole string

const (
	MediaRoleCover      MediaRole = "cover"
	MediaRoleScreenshot MediaRole = "screenshot"
	MediaRoleArtwork    MediaRole = "artwork"
	MediaRoleTrailer    MediaRole = "trailer"
)

// MediaImage is one normalized image entry
type MediaImage struct {
	URL  string    `json:"url"`
	Type string    `json:"type,omitempty"`
	Role MediaRole `json:"role"`
}

// MediaVideo is one normalized video entry
type MediaVideo struct {
	URL       string    `json:"url"`
	Type      string    `json:"type,omitempty"`
	Role      MediaRole `json:"role"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// MediaDocument is the canonical media shape shared by all providers.
// Provider clients translate their raw payloads into this; nothing
// downstream branches on provider identity.
type MediaDocument struct {
	Images []MediaImage `json:"images"`
	Videos []MediaVideo `json:"videos"`
}

// Empty reports whether the document carries no usable media
func (m *MediaDocument) Empty() bool {
	return m == nil || (len(m.Images) == 0 && len(m.Videos) == 0)
}

// PriceQuote is one observed price for an item in one region
type PriceQuote struct {
	Currency     string    `json:"currency"`
	AmountMinor  *int64    `json:"amount_minor"` // nil means the provider reported no price
	Free         bool      `json:"free"`         // explicit "free" signal, distinct from unknown
	TaxInclusive bool      `json:"tax_inclusive"`
	URL          string    `json:"url,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// HasAmount reports whether the quote carries a writable amount.
// A zero amount is valid only when the provider explicitly said "free".
func (q *PriceQuote) HasAmount() bool {
	if q == nil || q.Currency == "" || q.AmountMinor == nil {
		return false
	}
	if *q.AmountMinor == 0 {
		return q.Free
	}
	return *q.AmountMinor >= 0
}

// CatalogItem is the normalized per-item metadata payload every provider
// client produces from its raw upstream response
type CatalogItem struct {
	Provider       Provider       `json:"provider"`
	ExternalID     string         `json:"external_id"`
	Name           string         `json:"name"`
	AlternateNames []string       `json:"alternate_names,omitempty"`
	Platforms      []string       `json:"platforms,omitempty"`
	Genres         []string       `json:"genres,omitempty"`
	Developer      string         `json:"developer,omitempty"`
	Publisher      string         `json:"publisher,omitempty"`
	ReleaseDate    *time.Time     `json:"release_date,omitempty"`
	Rating         *float64       `json:"rating,omitempty"`
	RatingCount    *int64         `json:"rating_count,omitempty"`
	Description    string         `json:"description,omitempty"`
	ProviderSlug   string         `json:"provider_slug,omitempty"`
	Media          MediaDocument  `json:"media"`
	Price          *PriceQuote    `json:"price,omitempty"` // price embedded in the metadata response, if any
	Region         string         `json:"region"`          // region the metadata (and embedded price) came from
	Raw            map[string]any `json:"-"`               // raw upstream payload, retained for audit
}

// ItemError records one failed item inside an otherwise successful run
type ItemError struct {
	ItemID string `json:"item_id"`
	Stage  string `json:"stage"`
	Err    string `json:"error"`
}

// RunReport summarizes one ingestion run. It is always returned, even on
// partial failure; only total discovery failure surfaces as an error.
type RunReport struct {
	RunID               string      `json:"run_id"`
	Provider            Provider    `json:"provider"`
	Created             int         `json:"created"`
	Updated             int         `json:"updated"`
	Skipped             int         `json:"skipped"`
	PriceRecordsWritten int         `json:"price_records_written"`
	Errors              []ItemError `json:"errors,omitempty"`
	StartedAt           time.Time   `json:"started_at"`
	FinishedAt          time.Time   `json:"finished_at"`
}

// RegionCountry extracts the upper-cased ISO country part from a region
// key, accepting both "en-us" locales and bare "US" codes
func RegionCountry(region string) string {
	r := strings.ReplaceAll(strings.TrimSpace(region), "_", "-")
	if i := strings.LastIndex(r, "-"); i >= 0 {
		r = r[i+1:]
	}
	return strings.ToUpper(r)
}

// RegionCurrency returns the ISO 4217 currency for a region key. Unknown
// regions default to USD so pricing can still be recorded and converted.
func RegionCurrency(region string) string {
	if c, ok := regionCurrencies[RegionCountry(region)]; ok {
		return c
	}
	return "USD"
}

var regionCurrencies = map[string]string{
	"US": "USD", "GB": "GBP", "DE": "EUR", "FR": "EUR", "ES": "EUR",
	"IT": "EUR", "NL": "EUR", "PT": "EUR", "GR": "EUR", "CA": "CAD",
	"AU": "AUD", "JP": "JPY", "CN": "CNY", "BR": "BRL", "MX": "MXN",
	"SE": "SEK", "NO": "NOK", "DK": "DKK", "CH": "CHF", "KR": "KRW",
	"TW": "TWD", "HK": "HKD", "PL": "PLN", "ZA": "ZAR", "SA": "SAR",
	"AE": "AED", "IN": "INR", "AR": "ARS", "TR": "TRY", "CZ": "CZK",
	"HU": "HUF",
}

// RetailerLabel returns the storefront display label used as part of the
// price upsert key, e.g. "PlayStation Store".
func RetailerLabel(p Provider) string {
	switch p {
	case ProviderPlayStation:
		return "PlayStation Store"
	case ProviderSteam:
		return "Steam"
	case ProviderIGDB:
		return "IGDB"
	default:
		return string(p)
	}
}
