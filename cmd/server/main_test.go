package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("chatty"))
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer file.Close()
	w.maxSize, w.keepSize = 100, 40

	for i := 0; i < 20; i++ {
		_, err := w.Write([]byte("0123456789"))
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.LessOrEqual(t, len(data), 100)
	require.True(t, strings.HasSuffix(string(data), "0123456789"))
}

func TestLabelsCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"labels", "--start", "09:30", "--end", "10:15"})
	require.NoError(t, root.Execute())

	text := out.String()
	require.Contains(t, text, "4 rows per day, 28 slots per week")
	require.Contains(t, text, "9:30am")
	require.Contains(t, text, "10:00am *")
}

func TestKeysAddCommand(t *testing.T) {
	t.Setenv("GROUPMEET_DB_PATH", filepath.Join(t.TempDir(), "keys.db"))
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"keys", "add", "alice"})
	require.NoError(t, root.Execute())
	require.Len(t, strings.TrimSpace(out.String()), 36)
}
