package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/groupmeet/internal/repository"
)

// WidgetDataRepository implements repository.WidgetDataRepository for SQLite
type WidgetDataRepository struct {
	db *DB
}

// NewWidgetDataRepository creates a new WidgetDataRepository
func NewWidgetDataRepository(db *DB) *WidgetDataRepository {
	return &WidgetDataRepository{db: db}
}

// Load returns the stored document for key
func (r *WidgetDataRepository) Load(ctx context.Context, key string) (json.RawMessage, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM widget_data WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load widget data: %w", err)
	}
	return json.RawMessage(data), nil
}

// Save replaces the stored document for key
func (r *WidgetDataRepository) Save(ctx context.Context, key string, data json.RawMessage) error {
	if key == "" {
		return repository.ErrInvalidInput
	}

	query := `
		INSERT INTO widget_data (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to save widget data: %w", err)
	}
	return nil
}
