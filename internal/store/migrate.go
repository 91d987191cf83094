package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/gamedex/gd-indexer/internal/store/schema"
)

// Migrate creates or updates the database schema for all catalog tables.
// Order matters: referenced tables first.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&schema.Product{},
		&schema.VideoGameTitle{},
		&schema.VideoGame{},
		&schema.VideoGameTitleSource{},
		&schema.VideoGamePrice{},
		&schema.VideoGameSource{},
		&schema.AlternateName{},
		&schema.IngestRun{},
		&schema.ExchangeRate{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
