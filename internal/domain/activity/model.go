package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeDatasetCreated    ActivityType = "dataset_created"
	TypeAvailabilitySaved ActivityType = "availability_saved"
	TypeSaveFailed        ActivityType = "save_failed"
	TypeStaleDiscarded    ActivityType = "stale_discarded"
)

// ActivityEntry represents an event in a calendar's activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	DatasetKey   string       `json:"dataset_key"`
	UserID       *string      `json:"user_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
