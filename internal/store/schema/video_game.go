package schema

import (
	"time"

	"github.com/gamedex/gd-indexer/internal/domain"
)

// VideoGame represents the video_games table - one provider listing of a
// title. Identity is (provider, external_id); re-ingesting the same listing
// updates this row in place.
type VideoGame struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// TitleID references the owning video game title
	TitleID int64 `gorm:"column:title_id;not null;index:idx_video_games_title_id"`
	// Provider identifies the catalog source (ps-store, steam-store, igdb)
	Provider domain.Provider `gorm:"column:provider;not null;type:text;uniqueIndex:idx_video_games_provider_external_id,priority:1"`
	// ExternalID is the provider's identifier for this listing
	ExternalID string `gorm:"column:external_id;not null;type:text;uniqueIndex:idx_video_games_provider_external_id,priority:2"`
	// Name is the listing title as shown by the provider
	Name string `gorm:"column:name;not null;type:text"`
	// Platforms are the canonical platform labels for this listing
	Platforms []string `gorm:"column:platforms;type:jsonb;serializer:json"`
	// Genres are the canonical genre labels for this listing
	Genres []string `gorm:"column:genres;type:jsonb;serializer:json"`
	// ReleaseDate is the provider-reported release date, when parseable
	ReleaseDate *time.Time `gorm:"column:release_date;type:timestamptz"`
	// Developer is the studio credited by the provider
	Developer string `gorm:"column:developer;type:text"`
	// Publisher is the publisher credited by the provider
	Publisher string `gorm:"column:publisher;type:text"`
	// Rating is the provider's aggregate user rating, when present
	Rating *float64 `gorm:"column:rating"`
	// RatingCount is the number of ratings behind Rating
	RatingCount *int64 `gorm:"column:rating_count"`
	// Description is the provider's long-form description
	Description string `gorm:"column:description;type:text"`
	// ProviderSlug is the provider's URL slug for the listing, when exposed
	ProviderSlug string `gorm:"column:provider_slug;type:text"`
	// Media is the canonical media document extracted from the provider payload
	Media domain.MediaDocument `gorm:"column:media;type:jsonb;serializer:json"`
	// CreatedAt is the timestamp when this record was first created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Title  VideoGameTitle   `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
	Prices []VideoGamePrice `gorm:"foreignKey:VideoGameID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the VideoGame model
func (VideoGame) TableName() string {
	return "video_games"
}
