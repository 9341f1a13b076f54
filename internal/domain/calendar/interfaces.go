package calendar

import (
	"context"
	"encoding/json"

	"github.com/rpggio/groupmeet/internal/domain/activity"
)

// Store is the external key-value storage adapter.
type Store interface {
	Load(ctx context.Context, key string) (json.RawMessage, error)
	Save(ctx context.Context, key string, data json.RawMessage) error
}

// ActivityLogger records calendar events in the audit log.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// Recorder receives operational counters.
type Recorder interface {
	ObserveStorage(op, status string)
	ObserveStroke(cells int)
	ObserveStale(kind string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveStorage(string, string) {}
func (noopRecorder) ObserveStroke(int)             {}
func (noopRecorder) ObserveStale(string)           {}
