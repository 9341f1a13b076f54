package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/rpggio/groupmeet/internal/domain/aggregate"
	"github.com/rpggio/groupmeet/internal/domain/calendar"
	"github.com/rpggio/groupmeet/internal/domain/grid"
)

// Default ranking bounds for best_slots.
const (
	defaultBestLimit = 10
	defaultBestMin   = 1
)

// SessionRegistry hands out per-client editing sessions.
type SessionRegistry interface {
	Open(ctx context.Context, key, userID, clientID string) (*calendar.Session, error)
	Close(key, userID, clientID string) bool
}

// CalendarService defines the read-side calendar operations needed by MCP.
type CalendarService interface {
	Grid() grid.Grid
	Aggregate(ctx context.Context, key string) (aggregate.Result, error)
	Best(ctx context.Context, key string, limit, minParticipants int) ([]aggregate.Ranked, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches calendar commands.
type Handler struct {
	sessions  SessionRegistry
	calendars CalendarService
	activity  ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(sessions SessionRegistry, calendars CalendarService, activitySvc ActivityService) *Handler {
	return &Handler{
		sessions:  sessions,
		calendars: calendars,
		activity:  activitySvc,
	}
}

// Handle dispatches a request on behalf of userID (empty for anonymous
// viewers) from the client instance clientID.
func (h *Handler) Handle(ctx context.Context, userID, clientID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "open_calendar":
		var req OpenCalendarParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		key := strings.TrimSpace(req.CalendarKey)
		if key == "" {
			key = uuid.NewString()
		}
		sess, err := h.sessions.Open(ctx, key, userID, clientID)
		if err != nil {
			return nil, mapError(err)
		}
		agg, err := h.aggregate(ctx, key)
		if err != nil {
			return nil, err
		}
		return OpenCalendarResponse{
			CalendarKey: key,
			UserID:      userID,
			ReadOnly:    sess.ReadOnly(),
			Vector:      sess.Vector(),
			Grid:        h.gridResponse(),
			Aggregate:   agg,
		}, nil
	case "pointer_down", "pointer_over":
		var req CellParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sess, err := h.sessions.Open(ctx, req.CalendarKey, userID, clientID)
		if err != nil {
			return nil, mapError(err)
		}
		var update calendar.Update
		if method == "pointer_down" {
			update, err = sess.PointerDown(req.Cell)
		} else {
			update, err = sess.PointerOver(req.Cell)
		}
		if err != nil {
			return nil, mapError(err)
		}
		return UpdateResponse{Update: update, CalendarKey: req.CalendarKey}, nil
	case "pointer_up", "flush", "refresh":
		var req CalendarParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sess, err := h.sessions.Open(ctx, req.CalendarKey, userID, clientID)
		if err != nil {
			return nil, mapError(err)
		}
		var update calendar.Update
		switch method {
		case "pointer_up":
			update, err = sess.PointerUp(ctx)
		case "flush":
			update, err = sess.Flush(ctx)
		default:
			update, err = sess.Refresh(ctx)
		}
		resp := UpdateResponse{Update: update, CalendarKey: req.CalendarKey}
		if err != nil {
			apiErr := MapError(err)
			if apiErr == nil {
				return nil, err
			}
			apiErr.Details = resp
			return nil, apiErr
		}
		return resp, nil
	case "close_calendar":
		var req CalendarParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return CloseCalendarResponse{Closed: h.sessions.Close(req.CalendarKey, userID, clientID)}, nil
	case "get_aggregate":
		var req CalendarParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.aggregate(ctx, req.CalendarKey)
	case "best_slots":
		var req BestSlotsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Limit <= 0 {
			req.Limit = defaultBestLimit
		}
		if req.MinParticipants <= 0 {
			req.MinParticipants = defaultBestMin
		}
		ranked, err := h.calendars.Best(ctx, req.CalendarKey, req.Limit, req.MinParticipants)
		if err != nil {
			return nil, mapError(err)
		}
		resp := BestSlotsResponse{Slots: make([]SlotResponse, 0, len(ranked))}
		for _, r := range ranked {
			resp.Slots = append(resp.Slots, SlotResponse{
				Slot:         r.Slot,
				Label:        h.cellLabel(r.Slot),
				Participants: r.Participants,
				Heat:         r.Heat,
			})
		}
		return resp, nil
	case "get_labels":
		return h.gridResponse(), nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{
			DatasetKey: req.CalendarKey,
			UserID:     req.UserID,
			Limit:      req.Limit,
			Offset:     req.Offset,
		}
		if len(req.Types) == 1 {
			opts.ActivityType = &req.Types[0]
		}
		entries, err := h.activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := GetRecentActivityResponse{Activity: make([]ActivityEntryResponse, 0, len(entries))}
		for _, entry := range entries {
			if len(req.Types) > 1 && !slices.Contains(req.Types, entry.ActivityType) {
				continue
			}
			resp.Activity = append(resp.Activity, ActivityEntryResponse{
				Timestamp:   entry.CreatedAt,
				Type:        entry.ActivityType,
				CalendarKey: entry.DatasetKey,
				UserID:      entry.UserID,
				Summary:     entry.Summary,
				Details:     entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func (h *Handler) aggregate(ctx context.Context, key string) (AggregateResponse, error) {
	result, err := h.calendars.Aggregate(ctx, key)
	if err != nil {
		return AggregateResponse{}, mapError(err)
	}
	resp := AggregateResponse{Total: result.Total, Slots: make([]SlotResponse, len(result.Times))}
	for i, slot := range result.Times {
		resp.Slots[i] = SlotResponse{
			Slot:         i,
			Label:        h.cellLabel(i),
			Participants: slot.Participants,
			Heat:         result.Heat(i),
		}
	}
	return resp, nil
}

func (h *Handler) gridResponse() GridResponse {
	g := h.calendars.Grid()
	return GridResponse{
		SlotsPerDay: g.SlotsPerDay,
		SlotCount:   g.SlotCount(),
		DayNames:    grid.DayNames[:],
		Labels:      g.Labels,
		HourStarts:  g.HourStarts(),
	}
}

func (h *Handler) cellLabel(slot int) string {
	label, err := h.calendars.Grid().CellLabel(slot)
	if err != nil {
		return ""
	}
	return label
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
