package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"test","params":{"a":1},"id":1}`)
	req, err := ParseRequest(body)
	require.NoError(t, err)
	require.Equal(t, "2.0", req.JSONRPC)
	require.Equal(t, "test", req.Method)
	require.Equal(t, json.RawMessage(`{"a":1}`), req.Params)
}

func TestParseRequest_Invalid(t *testing.T) {
	body := bytes.NewBufferString(`{"jsonrpc":"2.0","id":1}`)
	_, err := ParseRequest(body)
	require.Error(t, err)
	require.NotErrorIs(t, err, errParse)

	_, err = ParseRequest(bytes.NewBufferString(`[`))
	require.ErrorIs(t, err, errParse)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 1, ErrInvalidParams, "bad params", nil)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"error"`)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestClientMiddleware(t *testing.T) {
	var got string
	handler := ClientMiddleware(httptestHandler(func(id string) { got = id }))

	req := httptest.NewRequest("POST", "/rpc", nil)
	req.Header.Set("Mcp-Session-Id", "mcp-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "mcp-1", got)

	req.Header.Set(ClientIDHeader, "tab-2")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "tab-2", got)
}

func httptestHandler(record func(string)) http.Handler {
	return http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id, _ := ClientIDFromContext(r.Context())
		record(id)
	})
}
