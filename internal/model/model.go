package model

import (
	"time"

	"fleetscan/internal/vocab"
)

// ServiceRow is one maintenance visit from the source table. Identity is the
// row's position in the source; rows are never mutated.
type ServiceRow struct {
	DeviceID    string
	Timestamp   time.Time
	Client      string
	Description string
}

// ExtractedEvent is one component/action pair pulled out of a description.
// AccessoryID is a comma-joined string when the source carried several
// identifiers for the same pair, empty when none was found.
type ExtractedEvent struct {
	Component   vocab.Component `json:"component"`
	Action      vocab.Action    `json:"action"`
	AccessoryID string          `json:"accessory_id,omitempty"`
}

// RowResult holds the events extracted from a single description. An empty
// Events slice is the explicit answer for "nothing relevant here".
type RowResult struct {
	Events []ExtractedEvent `json:"events"`
}

// BatchResult is position-aligned with the batch's input descriptions.
// The extraction client guarantees len(BatchResult) == batch size.
type BatchResult []RowResult

// EventRecord is one ExtractedEvent joined with its source row.
type EventRecord struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	RunID               string    `gorm:"index" json:"run_id,omitempty"`
	DeviceID            string    `json:"device_id"`
	Timestamp           time.Time `json:"timestamp"`
	Client              string    `json:"client"`
	Component           string    `json:"component"`
	Action              string    `json:"action"`
	AccessoryID         string    `json:"accessory_id,omitempty"`
	OriginalDescription string    `json:"original_description"`
}

// DeviceStateRecord is the reconciled snapshot for one (client, device) pair.
// InstalledComponents is a sorted comma-joined list, or "None" for the empty
// set so that "nothing installed" and "no data" stay distinguishable.
type DeviceStateRecord struct {
	ID                  uint   `gorm:"primaryKey" json:"-"`
	RunID               string `gorm:"index" json:"run_id,omitempty"`
	Client              string `json:"client"`
	DeviceID            string `json:"device_id"`
	InstalledComponents string `json:"installed_components"`
	LastEventTime       string `json:"last_event_timestamp"`
}

// RunReport summarizes one orchestrator run.
type RunReport struct {
	RunID           string        `gorm:"primaryKey;column:run_id" json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
	TotalRows       int           `json:"total_rows"`
	ProcessedRows   int           `json:"processed_rows"`
	TotalBatches    int           `json:"total_batches"`
	DegradedBatches int           `json:"degraded_batches"`
	EventsExtracted int           `json:"events_extracted"`
	LastError       string        `json:"last_error,omitempty"`
}

func (RunReport) TableName() string { return "runs" }
