package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/testserver"
)

type openResult struct {
	CalendarKey string              `json:"calendar_key"`
	UserID      string              `json:"user_id"`
	ReadOnly    bool                `json:"read_only"`
	Vector      availability.Vector `json:"vector"`
	Grid        struct {
		SlotsPerDay int      `json:"slots_per_day"`
		SlotCount   int      `json:"slot_count"`
		Labels      []string `json:"labels"`
	} `json:"grid"`
}

type updateResult struct {
	State   string              `json:"state"`
	Changed []int               `json:"changed"`
	Vector  availability.Vector `json:"vector"`
	Saved   bool                `json:"saved"`
	Dirty   bool                `json:"dirty"`
}

type aggregateResult struct {
	Total int `json:"total"`
	Slots []struct {
		Slot         int      `json:"slot"`
		Label        string   `json:"label"`
		Participants []string `json:"participants"`
		Heat         float64  `json:"heat"`
	} `json:"slots"`
}

func paint(t *testing.T, c *testserver.Client, key string, cells ...int) updateResult {
	t.Helper()
	c.MustCall(t, "pointer_down", map[string]any{"calendar_key": key, "cell": cells[0]}, nil)
	for _, cell := range cells[1:] {
		c.MustCall(t, "pointer_over", map[string]any{"calendar_key": key, "cell": cell}, nil)
	}
	var up updateResult
	c.MustCall(t, "pointer_up", map[string]any{"calendar_key": key}, &up)
	return up
}

func TestIntegration_TwoUsersPaintAndAggregate(t *testing.T) {
	ts := testserver.New(t)
	ts.AddAPIKey(t, "alice-token", "alice")
	ts.AddAPIKey(t, "bob-token", "bob")

	alice := ts.Client("alice-token", "alice-tab")
	bob := ts.Client("bob-token", "bob-tab")

	var opened openResult
	alice.MustCall(t, "open_calendar", map[string]any{}, &opened)
	require.NotEmpty(t, opened.CalendarKey)
	require.Equal(t, "alice", opened.UserID)
	require.False(t, opened.ReadOnly)
	require.Equal(t, 8, opened.Grid.SlotsPerDay)
	require.Equal(t, 56, opened.Grid.SlotCount)
	require.Len(t, opened.Vector, 56)
	key := opened.CalendarKey

	up := paint(t, alice, key, 8, 9, 10)
	require.True(t, up.Saved)
	require.False(t, up.Dirty)
	require.Equal(t, "idle", up.State)

	bob.MustCall(t, "open_calendar", map[string]any{"calendar_key": key}, &opened)
	require.Equal(t, key, opened.CalendarKey)
	paint(t, bob, key, 9, 10, 11)

	var agg aggregateResult
	alice.MustCall(t, "get_aggregate", map[string]any{"calendar_key": key}, &agg)
	require.Equal(t, 2, agg.Total)
	require.Len(t, agg.Slots, 56)
	require.Equal(t, []string{"alice"}, agg.Slots[8].Participants)
	require.Equal(t, []string{"alice", "bob"}, agg.Slots[9].Participants)
	require.Equal(t, []string{"alice", "bob"}, agg.Slots[10].Participants)
	require.Equal(t, []string{"bob"}, agg.Slots[11].Participants)
	require.InDelta(t, 1.0, agg.Slots[9].Heat, 1e-9)
	require.InDelta(t, 0.5, agg.Slots[11].Heat, 1e-9)
	require.Equal(t, "Mon 9:00am", agg.Slots[8].Label)

	var best struct {
		Slots []struct {
			Slot         int      `json:"slot"`
			Participants []string `json:"participants"`
		} `json:"slots"`
	}
	bob.MustCall(t, "best_slots", map[string]any{"calendar_key": key, "min_participants": 2}, &best)
	require.Len(t, best.Slots, 2)
	require.Equal(t, 9, best.Slots[0].Slot)
	require.Equal(t, 10, best.Slots[1].Slot)
}

func TestIntegration_AnonymousViewerIsReadOnly(t *testing.T) {
	ts := testserver.New(t)
	ts.AddAPIKey(t, "alice-token", "alice")

	alice := ts.Client("alice-token", "tab")
	var opened openResult
	alice.MustCall(t, "open_calendar", map[string]any{}, &opened)
	paint(t, alice, opened.CalendarKey, 0)

	viewer := ts.Client("", "viewer-tab")
	var view openResult
	viewer.MustCall(t, "open_calendar", map[string]any{"calendar_key": opened.CalendarKey}, &view)
	require.True(t, view.ReadOnly)
	require.Empty(t, view.UserID)

	var agg aggregateResult
	viewer.MustCall(t, "get_aggregate", map[string]any{"calendar_key": opened.CalendarKey}, &agg)
	require.Equal(t, 1, agg.Total)
	require.Equal(t, []string{"alice"}, agg.Slots[0].Participants)

	resp := viewer.Call(t, "pointer_down", map[string]any{"calendar_key": opened.CalendarKey, "cell": 1})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Error.Data, &apiErr))
	require.Equal(t, "UNAUTHENTICATED", apiErr.Code)

	// Nothing the viewer did reached storage.
	viewer.MustCall(t, "get_aggregate", map[string]any{"calendar_key": opened.CalendarKey}, &agg)
	require.Equal(t, 1, agg.Total)
	require.Empty(t, agg.Slots[1].Participants)
}

func TestIntegration_InvalidTokenRejected(t *testing.T) {
	ts := testserver.New(t)

	resp := ts.Client("bogus", "tab").Call(t, "get_labels", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_PersistsAcrossClients(t *testing.T) {
	ts := testserver.New(t)
	ts.AddAPIKey(t, "alice-token", "alice")

	tab1 := ts.Client("alice-token", "tab1")
	var opened openResult
	tab1.MustCall(t, "open_calendar", map[string]any{"calendar_key": "team-sync"}, &opened)
	require.Equal(t, "team-sync", opened.CalendarKey)
	paint(t, tab1, "team-sync", 20, 21)

	var closed struct {
		Closed bool `json:"closed"`
	}
	tab1.MustCall(t, "close_calendar", map[string]any{"calendar_key": "team-sync"}, &closed)
	require.True(t, closed.Closed)

	tab2 := ts.Client("alice-token", "tab2")
	tab2.MustCall(t, "open_calendar", map[string]any{"calendar_key": "team-sync"}, &opened)
	require.True(t, opened.Vector[20])
	require.True(t, opened.Vector[21])
	require.False(t, opened.Vector[22])

	raw, err := ts.Store.Load(context.Background(), "team-sync")
	require.NoError(t, err)
	var doc struct {
		WidgetID     string                     `json:"widgetId"`
		Facilitator  string                     `json:"facilitator"`
		CalendarData map[string]json.RawMessage `json:"calendarData"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, "team-sync", doc.WidgetID)
	require.Equal(t, "alice", doc.Facilitator)
	require.Contains(t, doc.CalendarData, "alice")
}

func TestIntegration_LegacySparseDocument(t *testing.T) {
	ts := testserver.New(t)
	ts.AddAPIKey(t, "carol-token", "carol")

	legacy := `{"widgetId":"legacy","facilitator":"dave","usersFreeTimes":true,` +
		`"calendarData":{"dave":[0,1,2],"erin":"garbage","_meta":{"v":1}}}`
	require.NoError(t, ts.Store.Save(context.Background(), "legacy", json.RawMessage(legacy)))

	carol := ts.Client("carol-token", "tab")
	var agg aggregateResult
	carol.MustCall(t, "get_aggregate", map[string]any{"calendar_key": "legacy"}, &agg)
	require.Equal(t, 2, agg.Total)
	require.Equal(t, []string{"dave"}, agg.Slots[0].Participants)
	require.Empty(t, agg.Slots[3].Participants)

	paint(t, carol, "legacy", 0)

	carol.MustCall(t, "get_aggregate", map[string]any{"calendar_key": "legacy"}, &agg)
	require.Equal(t, 3, agg.Total)
	require.Equal(t, []string{"carol", "dave"}, agg.Slots[0].Participants)

	raw, err := ts.Store.Load(context.Background(), "legacy")
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.JSONEq(t, `true`, string(doc["usersFreeTimes"]))
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["calendarData"], &data))
	require.JSONEq(t, `[0,1,2]`, string(data["dave"]))
	require.JSONEq(t, `{"v":1}`, string(data["_meta"]))
}

func TestIntegration_ResetPolicyIgnoresSparse(t *testing.T) {
	ts := testserver.NewWithOptions(t, testserver.Options{Policy: availability.PolicyReset})
	ts.AddAPIKey(t, "carol-token", "carol")

	legacy := `{"widgetId":"legacy","facilitator":"dave","calendarData":{"dave":[0,1,2]}}`
	require.NoError(t, ts.Store.Save(context.Background(), "legacy", json.RawMessage(legacy)))

	var agg aggregateResult
	ts.Client("carol-token", "tab").MustCall(t, "get_aggregate", map[string]any{"calendar_key": "legacy"}, &agg)
	require.Equal(t, 1, agg.Total)
	require.Empty(t, agg.Slots[0].Participants)
}

func TestIntegration_ActivityAndMetrics(t *testing.T) {
	ts := testserver.New(t)
	ts.AddAPIKey(t, "alice-token", "alice")

	alice := ts.Client("alice-token", "tab")
	var opened openResult
	alice.MustCall(t, "open_calendar", map[string]any{"calendar_key": "standup"}, &opened)
	paint(t, alice, "standup", 4, 5)

	var recent struct {
		Activity []struct {
			Type        string `json:"type"`
			CalendarKey string `json:"calendar_key"`
		} `json:"activity"`
	}
	alice.MustCall(t, "get_recent_activity", map[string]any{"calendar_key": "standup"}, &recent)
	require.Len(t, recent.Activity, 2)
	require.Equal(t, "availability_saved", recent.Activity[0].Type)
	require.Equal(t, "dataset_created", recent.Activity[1].Type)

	alice.MustCall(t, "get_recent_activity", map[string]any{
		"calendar_key": "standup",
		"types":        []string{"dataset_created"},
	}, &recent)
	require.Len(t, recent.Activity, 1)

	resp, err := http.Get(ts.Server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "groupmeet_strokes_total 1")
	require.Contains(t, string(body), `groupmeet_storage_operations_total{op="save",status="ok"} 2`)
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}

func TestIntegration_MCPOverStreamableHTTP(t *testing.T) {
	ts := testserver.New(t)
	ts.AddAPIKey(t, "alice-token", "alice")
	ctx := context.Background()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: &bearerTransport{token: "alice-token", base: http.DefaultTransport}},
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	call := func(name string, args map[string]any) string {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
		require.NoError(t, err)
		require.NotEmpty(t, result.Content)
		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		require.False(t, result.IsError, "%s: %s", name, text.Text)
		return text.Text
	}

	var opened openResult
	require.NoError(t, json.Unmarshal([]byte(call("open_calendar", map[string]any{"calendar_key": "mcp-cal"})), &opened))
	require.Equal(t, "alice", opened.UserID)

	call("pointer_down", map[string]any{"calendar_key": "mcp-cal", "cell": 2})
	call("pointer_up", map[string]any{"calendar_key": "mcp-cal"})

	// The RPC surface sees the same store.
	var agg aggregateResult
	ts.Client("alice-token", "rpc-tab").MustCall(t, "get_aggregate", map[string]any{"calendar_key": "mcp-cal"}, &agg)
	require.Equal(t, []string{"alice"}, agg.Slots[2].Participants)
}
