package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/gamedex/gd-indexer/internal/domain"
)

// VideoGameTitleSource represents the video_game_title_sources table - the raw
// provider payload retained per (title, provider) for audit. PayloadHash is
// the canonical-JSON hash of Payload; writes are skipped when the hash is
// unchanged.
type VideoGameTitleSource struct {
	// TitleID references the title the payload describes
	TitleID int64 `gorm:"column:title_id;primaryKey;autoIncrement:false"`
	// Provider identifies which source produced the payload
	Provider domain.Provider `gorm:"column:provider;primaryKey;type:text"`
	// Payload is the raw upstream item payload
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// PayloadHash is the sha256 of the canonicalized payload, for change detection
	PayloadHash string `gorm:"column:payload_hash;not null;type:text"`
	// FetchedAt is when the payload was last fetched
	FetchedAt time.Time `gorm:"column:fetched_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Title VideoGameTitle `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the VideoGameTitleSource model
func (VideoGameTitleSource) TableName() string {
	return "video_game_title_sources"
}
