package schema

import (
	"time"

	"github.com/gamedex/gd-indexer/internal/domain"
)

// RunStatus represents the lifecycle state of an ingest run
type RunStatus string

const (
	// RunStatusRunning indicates the run has started and not yet finished
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted indicates the run finished, possibly with item-level errors
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed indicates the run aborted before completing
	RunStatusFailed RunStatus = "failed"
)

// IngestRun represents the ingest_runs table - the audit record for one
// provider ingestion pass. The ID is a ULID so runs sort by start time.
type IngestRun struct {
	// ID is the ULID assigned at run start
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Provider is the catalog source this run ingested
	Provider domain.Provider `gorm:"column:provider;not null;type:text;index:idx_ingest_runs_provider"`
	// Regions are the region codes the run covered
	Regions []string `gorm:"column:regions;type:jsonb;serializer:json"`
	// Status is the run lifecycle state
	Status RunStatus `gorm:"column:status;not null;type:text"`
	// Created is the number of listings created by the run
	Created int64 `gorm:"column:created;not null;default:0"`
	// Updated is the number of listings updated by the run
	Updated int64 `gorm:"column:updated;not null;default:0"`
	// Skipped is the number of items skipped (unchanged payload, no usable data)
	Skipped int64 `gorm:"column:skipped;not null;default:0"`
	// PriceRecordsWritten is the number of price rows upserted by the run
	PriceRecordsWritten int64 `gorm:"column:price_records_written;not null;default:0"`
	// ErrorCount is the number of item-level failures recorded
	ErrorCount int64 `gorm:"column:error_count;not null;default:0"`
	// LastError is the most recent item-level error message, if any
	LastError string `gorm:"column:last_error;type:text"`
	// StartedAt is when the run began
	StartedAt time.Time `gorm:"column:started_at;not null;type:timestamptz"`
	// FinishedAt is when the run ended; nil while running
	FinishedAt *time.Time `gorm:"column:finished_at;type:timestamptz"`
}

// TableName specifies the table name for the IngestRun model
func (IngestRun) TableName() string {
	return "ingest_runs"
}
