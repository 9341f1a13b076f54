package mcp

import (
	"time"

	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/calendar"
)

type OpenCalendarParams struct {
	CalendarKey string `json:"calendar_key,omitempty" jsonschema:"calendar to open; omit to create a new one"`
}

type CalendarParams struct {
	CalendarKey string `json:"calendar_key" jsonschema:"calendar key returned by open_calendar"`
}

type CellParams struct {
	CalendarKey string `json:"calendar_key" jsonschema:"calendar key returned by open_calendar"`
	Cell        int    `json:"cell" jsonschema:"slot id, day*slots_per_day + row"`
}

type BestSlotsParams struct {
	CalendarKey     string `json:"calendar_key" jsonschema:"calendar key returned by open_calendar"`
	Limit           int    `json:"limit,omitempty" jsonschema:"maximum number of slots to return, default 10"`
	MinParticipants int    `json:"min_participants,omitempty" jsonschema:"skip slots with fewer free participants, default 1"`
}

type GetLabelsParams struct{}

type GetRecentActivityParams struct {
	CalendarKey string                  `json:"calendar_key,omitempty"`
	UserID      *string                 `json:"user_id,omitempty"`
	Types       []activity.ActivityType `json:"types,omitempty"`
	Limit       int                     `json:"limit,omitempty"`
	Offset      int                     `json:"offset,omitempty"`
}

type GridResponse struct {
	SlotsPerDay int      `json:"slots_per_day"`
	SlotCount   int      `json:"slot_count"`
	DayNames    []string `json:"day_names"`
	Labels      []string `json:"labels,omitempty"`
	HourStarts  []int    `json:"hour_starts,omitempty"`
}

type OpenCalendarResponse struct {
	CalendarKey string              `json:"calendar_key"`
	UserID      string              `json:"user_id,omitempty"`
	ReadOnly    bool                `json:"read_only"`
	Vector      availability.Vector `json:"vector,omitempty"`
	Grid        GridResponse        `json:"grid"`
	Aggregate   AggregateResponse   `json:"aggregate"`
}

type UpdateResponse struct {
	calendar.Update
	CalendarKey string `json:"calendar_key"`
}

type SlotResponse struct {
	Slot         int      `json:"slot"`
	Label        string   `json:"label"`
	Participants []string `json:"participants"`
	Heat         float64  `json:"heat"`
}

type AggregateResponse struct {
	Total int            `json:"total"`
	Slots []SlotResponse `json:"slots"`
}

type BestSlotsResponse struct {
	Slots []SlotResponse `json:"slots"`
}

type CloseCalendarResponse struct {
	Closed bool `json:"closed"`
}

type ActivityEntryResponse struct {
	Timestamp   time.Time             `json:"timestamp"`
	Type        activity.ActivityType `json:"type"`
	CalendarKey string                `json:"calendar_key"`
	UserID      *string               `json:"user_id,omitempty"`
	Summary     string                `json:"summary"`
	Details     string                `json:"details,omitempty"`
}

type GetRecentActivityResponse struct {
	Activity []ActivityEntryResponse `json:"activity"`
}
