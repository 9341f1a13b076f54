package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, h *Handler) {
	addTool[OpenCalendarParams](server, h, "open_calendar",
		"Open a calendar for the current user, creating it if needed. Returns the grid, the user's vector and the group aggregate.")
	addTool[CellParams](server, h, "pointer_down",
		"Start a paint stroke: flip one cell and paint the rest of the stroke with its new value")
	addTool[CellParams](server, h, "pointer_over",
		"Extend the current stroke over a cell")
	addTool[CalendarParams](server, h, "pointer_up",
		"End the stroke and store the user's availability")
	addTool[CalendarParams](server, h, "flush",
		"Retry storing availability after a failed save")
	addTool[CalendarParams](server, h, "refresh",
		"Reload the user's stored availability unless local edits are pending")
	addTool[CalendarParams](server, h, "close_calendar",
		"Drop the editing session for a calendar")
	addTool[CalendarParams](server, h, "get_aggregate",
		"Per-cell participants and heat for every user of a calendar")
	addTool[BestSlotsParams](server, h, "best_slots",
		"Cells ranked by how many participants are free")
	addTool[GetLabelsParams](server, h, "get_labels",
		"Grid dimensions, day names, row labels and hour markers")
	addTool[GetRecentActivityParams](server, h, "get_recent_activity",
		"Recent calendar events: creation, saves and failed saves")
}

// addTool registers a tool that forwards its arguments to the dispatch handler.
func addTool[In any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			params, err := json.Marshal(in)
			if err != nil {
				return nil, nil, fmt.Errorf("encoding %s arguments: %w", name, err)
			}
			result, err := h.Handle(ctx, getUserID(ctx), getClientID(ctx), name, params)
			if err != nil {
				return errorResult(err), nil, nil
			}
			return textResult(result), nil, nil
		})
}

func textResult(payload any) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: formatPayload(payload)}},
	}
}

func errorResult(err error) *sdkmcp.CallToolResult {
	var payload any = map[string]string{"code": "INTERNAL", "message": err.Error()}
	if apiErr := MapError(err); apiErr != nil {
		payload = apiErr
	}
	result := textResult(payload)
	result.IsError = true
	return result
}
