package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/calendar"
	"github.com/rpggio/groupmeet/internal/domain/grid"
	"github.com/rpggio/groupmeet/internal/mcp"
	"github.com/rpggio/groupmeet/internal/metrics"
	"github.com/rpggio/groupmeet/internal/sqlite"
	"github.com/rpggio/groupmeet/internal/transport"
)

// TestServer is a fully wired HTTP server backed by in-memory sqlite.
type TestServer struct {
	Server  *httptest.Server
	DB      *sqlite.DB
	Store   *sqlite.WidgetDataRepository
	APIKeys *sqlite.APIKeyRepository
	Metrics *metrics.Recorder
	Grid    grid.Grid
}

// Options tweaks the wiring of a TestServer.
type Options struct {
	Policy availability.Policy
}

// New starts a server with an 8-row grid (9:00am to 10:45am).
func New(t *testing.T) *TestServer {
	return NewWithOptions(t, Options{})
}

func NewWithOptions(t *testing.T, opts Options) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	g, err := grid.NewGrid(grid.Clock{Hour: 9}, grid.Clock{Hour: 10, Minute: 45})
	require.NoError(t, err)

	store := sqlite.NewWidgetDataRepository(db)
	apiKeys := sqlite.NewAPIKeyRepository(db)
	recorder := metrics.New()

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), nil)
	calendarSvc := calendar.NewService(store, activitySvc, recorder, calendar.Config{Grid: g, Policy: opts.Policy}, nil)
	registry := calendar.NewRegistry(calendarSvc, calendar.DefaultIdleTimeout)
	handler := mcp.NewHandler(registry, calendarSvc, activitySvc)

	mcpServer := mcp.NewServer(mcp.Config{
		Handler:     handler,
		Resolver:    apiKeys,
		AuthEnabled: true,
		Version:     "test",
	})

	router := transport.NewServer(handler, transport.Options{
		Identity: transport.AuthMiddleware(apiKeys),
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			nil,
		),
		Metrics: recorder.Handler(),
	})
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server:  server,
		DB:      db,
		Store:   store,
		APIKeys: apiKeys,
		Metrics: recorder,
		Grid:    g,
	}
}

// AddAPIKey registers token for userID.
func (ts *TestServer) AddAPIKey(t *testing.T, token, userID string) {
	t.Helper()
	require.NoError(t, ts.APIKeys.AddKey(context.Background(), token, userID, "test"))
}

// Client calls /rpc as one client instance. An empty Token calls anonymously.
type Client struct {
	ts       *TestServer
	Token    string
	ClientID string
	nextID   int
}

// Client returns an RPC client for token. clientID names the instance.
func (ts *TestServer) Client(token, clientID string) *Client {
	return &Client{ts: ts, Token: token, ClientID: clientID}
}

// Response is a decoded JSON-RPC response.
type Response struct {
	StatusCode int
	Result     json.RawMessage
	Error      *ResponseError
}

type ResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Call posts one JSON-RPC request and decodes the envelope.
func (c *Client) Call(t *testing.T, method string, params any) Response {
	t.Helper()
	c.nextID++

	payload := map[string]any{"jsonrpc": "2.0", "id": c.nextID, "method": method}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, c.ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.ClientID != "" {
		req.Header.Set(transport.ClientIDHeader, c.ClientID)
	}

	resp, err := c.ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := Response{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return out
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *ResponseError  `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	out.Result = envelope.Result
	out.Error = envelope.Error
	return out
}

// MustCall is Call that fails the test on any RPC error and decodes the result.
func (c *Client) MustCall(t *testing.T, method string, params, out any) {
	t.Helper()
	resp := c.Call(t, method, params)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, resp.Error, "%s failed: %+v", method, resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Result, out))
	}
}
