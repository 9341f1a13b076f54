package mocks

import (
	"context"
	"encoding/json"

	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// WidgetDataRepository is a mock for repository.WidgetDataRepository.
type WidgetDataRepository struct {
	mock.Mock
}

func (m *WidgetDataRepository) Load(ctx context.Context, key string) (json.RawMessage, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).(json.RawMessage); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WidgetDataRepository) Save(ctx context.Context, key string, data json.RawMessage) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for the calendar service's activity sink.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
