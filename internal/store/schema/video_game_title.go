package schema

import (
	"time"
)

// VideoGameTitle represents the video_game_titles table - the game-level node
// between a product and its per-provider listings. One title per product for
// each distinct normalized title string observed.
type VideoGameTitle struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProductID references the owning product
	ProductID int64 `gorm:"column:product_id;not null;index:idx_video_game_titles_product_id"`
	// Title is the display title as observed from the provider
	Title string `gorm:"column:title;not null;type:text"`
	// NormalizedTitle mirrors the product dedup key for direct lookup
	NormalizedTitle string `gorm:"column:normalized_title;not null;uniqueIndex:idx_video_game_titles_normalized_title;type:text"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Product Product     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Games   []VideoGame `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the VideoGameTitle model
func (VideoGameTitle) TableName() string {
	return "video_game_titles"
}
