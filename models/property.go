package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing status enum. StatusUnknown is used when the source text maps to
// none of the known states.
const (
	StatusAvailable     = "available"
	StatusUnderContract = "under_contract"
	StatusSold          = "sold"
	StatusUnknown       = "unknown"
)

// Location is a best-effort decomposition of a raw location string.
// Raw is always preserved; the structured fields may be empty when the
// source format is unparseable.
type Location struct {
	Raw   string `json:"raw" db:"location_raw"`
	City  string `json:"city" db:"city"`
	State string `json:"state" db:"state"`
	Zip   string `json:"zip" db:"zip"`
}

// Property is the canonical record produced by normalizing exactly one
// RawCandidate. ID is assigned during identity resolution and is stable
// across re-runs of the same source item. Numeric fields are never negative;
// zero means unknown. Immutable within a pipeline run; a later run on
// fresher page data supersedes the stored row wholesale.
type Property struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	DetailURL   string    `json:"detail_url" db:"detail_url"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Location    Location  `json:"location"`
	Units       int       `json:"units" db:"units"`
	YearBuilt   int       `json:"year_built" db:"year_built"`
	PriceRaw    string    `json:"price_raw" db:"price_raw"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	SquareFeet  int       `json:"square_feet" db:"square_feet"`
	Status      string    `json:"status" db:"status"`
	Source      string    `json:"source" db:"source"` // extraction strategy tag
	Warnings    []string  `json:"warnings,omitempty" db:"-"`
	ScrapedAt   time.Time `json:"scraped_at" db:"scraped_at"`
}

// BrokerMeta is the caller-supplied broker identity, one per scraper
// configuration.
type BrokerMeta struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

// Broker is the persisted broker record. Created lazily on first sync,
// looked up by name afterwards, never deleted by this subsystem.
type Broker struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Website   string    `json:"website" db:"website"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
