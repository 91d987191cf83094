package schema

import (
	"time"

	"github.com/gamedex/gd-indexer/internal/domain"
)

// VideoGameSource represents the video_game_sources table - one row per
// provider with a running count of listings ingested from it. ItemsCount is
// maintained by atomic SQL increments, never read-modify-write.
type VideoGameSource struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Provider is the catalog source key
	Provider domain.Provider `gorm:"column:provider;not null;uniqueIndex:idx_video_game_sources_provider;type:text"`
	// Label is the human-readable retailer name
	Label string `gorm:"column:label;not null;type:text"`
	// ItemsCount is the number of listings attributed to this source
	ItemsCount int64 `gorm:"column:items_count;not null;default:0"`
	// LastRunAt is when an ingest run last touched this source
	LastRunAt *time.Time `gorm:"column:last_run_at;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the VideoGameSource model
func (VideoGameSource) TableName() string {
	return "video_game_sources"
}
