package transport

import (
	"context"
	"net/http"
)

// ClientIDHeader identifies one client instance (a browser tab, an agent
// connection) so its pointer events share one editing session.
const ClientIDHeader = "X-Client-Id"

type clientKey struct{}

// ClientIDFromContext returns the client ID from context, if present.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(clientKey{}).(string)
	return clientID, ok
}

// ClientMiddleware extracts the client ID header, falling back to
// Mcp-Session-Id, and stores it in context.
func ClientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get(ClientIDHeader)
		if clientID == "" {
			clientID = r.Header.Get("Mcp-Session-Id")
		}
		if clientID != "" {
			ctx := context.WithValue(r.Context(), clientKey{}, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}
