package models

import (
	"encoding/json"
	"time"
)

// Store names used in RecordError entries
const (
	StoreFlat  = "flat"
	StoreGraph = "graph"
)

// RecordError describes a single record's failure against one store.
type RecordError struct {
	PropertyID string `json:"property_id"`
	Store      string `json:"store"`
	Message    string `json:"message"`
}

// SyncReport is the per-invocation outcome of a sync. A record counts as
// succeeded only when both stores accepted it. Purely observational, never
// persisted.
type SyncReport struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Errors    []RecordError `json:"errors,omitempty"`
}

// IngestRun records one processing cycle for operational visibility.
type IngestRun struct {
	ID              int64           `json:"id" db:"id"`
	Source          string          `json:"source" db:"source"`
	StartedAt       time.Time       `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at" db:"finished_at"`
	Status          string          `json:"status" db:"status"` // running, completed, failed
	PagesProcessed  int             `json:"pages_processed" db:"pages_processed"`
	CandidatesFound int             `json:"candidates_found" db:"candidates_found"`
	PropertiesSaved int             `json:"properties_saved" db:"properties_saved"`
	ErrorsCount     int             `json:"errors_count" db:"errors_count"`
	Metadata        json.RawMessage `json:"metadata" db:"metadata"`
}

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
