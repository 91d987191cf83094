package schema

import (
	"time"
)

// AlternateName represents the alternate_names table - additional display
// titles observed for a product (regional names, editions collapsing to the
// same normalized key).
type AlternateName struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProductID references the owning product
	ProductID int64 `gorm:"column:product_id;not null;uniqueIndex:idx_alternate_names_product_normalized,priority:1"`
	// Name is the alternate display title
	Name string `gorm:"column:name;not null;type:text"`
	// NormalizedName is the normalized form, unique per product
	NormalizedName string `gorm:"column:normalized_name;not null;type:text;uniqueIndex:idx_alternate_names_product_normalized,priority:2"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the AlternateName model
func (AlternateName) TableName() string {
	return "alternate_names"
}
