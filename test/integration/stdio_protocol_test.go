package integration_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestStdioProtocolCompliance drives the built binary over stdio with the SDK
// client. Any log line leaking onto stdout breaks the client's framing.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := "./bin/groupmeet"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/groupmeet"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Run 'go build -o bin/groupmeet ./cmd/server' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "serve")
	cmd.Env = append(os.Environ(),
		"GROUPMEET_TRANSPORT_MODE=stdio",
		"GROUPMEET_DB_PATH=:memory:",
		"GROUPMEET_DEFAULT_USER=stdio-user",
		"GROUPMEET_LOG_LEVEL=debug",
	)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "Failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "groupmeet", initResult.ServerInfo.Name)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "tools/list failed")

		toolNames := make(map[string]bool)
		for _, tool := range tools.Tools {
			toolNames[tool.Name] = true
		}
		for _, name := range []string{"open_calendar", "pointer_down", "pointer_up", "get_aggregate", "get_labels"} {
			require.True(t, toolNames[name], "Missing expected tool: %s", name)
		}
	})

	t.Run("PaintOverStdio", func(t *testing.T) {
		call := func(name string, args map[string]any) string {
			result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
			require.NoError(t, err, "tools/call %s failed", name)
			require.NotEmpty(t, result.Content)
			text, ok := result.Content[0].(*sdkmcp.TextContent)
			require.True(t, ok)
			require.False(t, result.IsError, "%s returned error: %s", name, text.Text)
			return text.Text
		}

		var opened struct {
			CalendarKey string `json:"calendar_key"`
			UserID      string `json:"user_id"`
		}
		require.NoError(t, json.Unmarshal([]byte(call("open_calendar", map[string]any{})), &opened))
		require.NotEmpty(t, opened.CalendarKey)
		require.Equal(t, "stdio-user", opened.UserID)

		call("pointer_down", map[string]any{"calendar_key": opened.CalendarKey, "cell": 3})
		call("pointer_up", map[string]any{"calendar_key": opened.CalendarKey})

		var agg struct {
			Total int `json:"total"`
			Slots []struct {
				Participants []string `json:"participants"`
			} `json:"slots"`
		}
		require.NoError(t, json.Unmarshal([]byte(call("get_aggregate", map[string]any{"calendar_key": opened.CalendarKey})), &agg))
		require.Equal(t, 1, agg.Total)
		require.Equal(t, []string{"stdio-user"}, agg.Slots[3].Participants)
	})
}
