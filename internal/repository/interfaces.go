package repository

import (
	"context"
	"encoding/json"

	"github.com/rpggio/groupmeet/internal/domain/activity"
)

// WidgetDataRepository stores one JSON document per scheduling instance.
// Implementations provide no locking; Save replaces the whole document.
type WidgetDataRepository interface {
	Load(ctx context.Context, key string) (json.RawMessage, error)
	Save(ctx context.Context, key string, data json.RawMessage) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// APIKeyRepository resolves bearer tokens to user ids
type APIKeyRepository interface {
	ResolveUser(ctx context.Context, token string) (string, error)
	AddKey(ctx context.Context, token, userID, description string) error
}
