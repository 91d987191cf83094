package schema

import (
	"time"
)

// ProductType represents the kind of catalog product
type ProductType string

const (
	// ProductTypeVideoGame represents a video game product
	ProductTypeVideoGame ProductType = "video_game"
)

// Product represents the products table - the root of the catalog identity
// hierarchy. Two provider listings that normalize to the same title share one
// product row.
type Product struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Type identifies the product kind (currently always video_game)
	Type ProductType `gorm:"column:type;not null;type:text"`
	// DisplayTitle is the human-readable title from the first provider that created the row
	DisplayTitle string `gorm:"column:display_title;not null;type:text"`
	// NormalizedTitle is the canonical dedup key (lowercased, folded, alphanumeric only)
	NormalizedTitle string `gorm:"column:normalized_title;not null;uniqueIndex:idx_products_normalized_title;type:text"`
	// Slug is the URL-safe identifier derived from the display title
	Slug string `gorm:"column:slug;not null;type:text;index:idx_products_slug"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Titles         []VideoGameTitle `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	AlternateNames []AlternateName  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
