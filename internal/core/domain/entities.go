package domain

import (
	"fmt"
	"time"
)

// Category is the kind of a user-entered search filter.
type Category string

const (
	CategoryID        Category = "id"
	CategoryMagicWord Category = "magicword"
	CategorySensor    Category = "sensor"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryID, CategoryMagicWord, CategorySensor:
		return true
	}
	return false
}

// FilterEntry is one search filter as entered in the UI.
// Field names the compared attribute and is required for id and sensor entries.
type FilterEntry struct {
	Category Category `json:"category" yaml:"category"`
	Field    string   `json:"type,omitempty" yaml:"type,omitempty"`
	Value    string   `json:"value" yaml:"value"`
}

// Validate checks the structural requirements of an entry.
func (e FilterEntry) Validate() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEntry, e.Category)
	}
	if e.Value == "" {
		return fmt.Errorf("%w: %s entry has an empty value", ErrInvalidEntry, e.Category)
	}
	if e.Category != CategoryMagicWord && e.Field == "" {
		return fmt.Errorf("%w: %s entry requires a field", ErrInvalidEntry, e.Category)
	}
	return nil
}

// SearchContext selects the feature type a filter is built for.
type SearchContext string

const (
	ContextImagery SearchContext = "imagery"
	ContextVideo   SearchContext = "video"
)

// Valid reports whether c is a known search context.
func (c SearchContext) Valid() bool {
	return c == ContextImagery || c == ContextVideo
}

// Feature is a single record returned by the feature query service.
type Feature struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Geometry   any               `json:"geometry,omitempty"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureProperties holds the attributes the UI reads from imagery and video
// records, plus the links derived after the query.
type FeatureProperties struct {
	ID              int64  `json:"id"`
	EntryID         string `json:"entry_id,omitempty"`
	ImageID         string `json:"image_id,omitempty"`
	Filename        string `json:"filename,omitempty"`
	Sensor          string `json:"sensor_id,omitempty"`
	Mission         string `json:"mission_id,omitempty"`
	AcquisitionDate string `json:"acquisition_date,omitempty"`

	// Derived by the feature query adapter.
	Type                string `json:"type,omitempty"`
	VideoName           string `json:"video_name,omitempty"`
	VideoURL            string `json:"video_url,omitempty"`
	PlayerURL           string `json:"player_url,omitempty"`
	RequestThumbnailURL string `json:"request_thumbnail_url,omitempty"`
	TLVURL              string `json:"tlv_url,omitempty"`
}

// FeatureQuery is a page request against the feature query service.
type FeatureQuery struct {
	Context SearchContext
	Filter  string
	Offset  int
	Limit   int
}

// FeaturePage is one page of query results.
type FeaturePage struct {
	Features []Feature `json:"features"`
	Total    int       `json:"total"`
}

// SavedSearch is a named, persisted list of filter entries.
type SavedSearch struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Context   SearchContext `json:"context"`
	Entries   []FilterEntry `json:"entries"`
	Filter    string        `json:"filter"`
	CreatedAt time.Time     `json:"created_at"`
	LastRunAt *time.Time    `json:"last_run_at,omitempty"`
	LastCount *int          `json:"last_count,omitempty"`
}

// SearchEvent is published after every search against the feature service.
type SearchEvent struct {
	Time          time.Time     `json:"time"`
	Context       SearchContext `json:"context"`
	Filter        string        `json:"filter"`
	Offset        int           `json:"offset"`
	Limit         int           `json:"limit"`
	Count         int           `json:"count"`
	Cached        bool          `json:"cached"`
	DurationMS    int64         `json:"duration_ms"`
	SavedSearchID string        `json:"saved_search_id,omitempty"`
}
