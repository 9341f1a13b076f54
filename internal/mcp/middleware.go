package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const (
	userIDKey contextKey = iota
	clientIDKey
)

// getUserID extracts the caller's user id; empty means anonymous.
func getUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// getClientID extracts the client instance id.
func getClientID(ctx context.Context) string {
	v, _ := ctx.Value(clientIDKey).(string)
	return v
}

// UserResolver resolves a user id from a bearer token.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

var errUnauthorized = errors.New("unauthorized")

// authMiddleware resolves bearer tokens as MCP middleware. Requests without a
// token continue anonymously; an unknown token is rejected.
func authMiddleware(resolver UserResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method == "initialize" || method == "ping" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return next(ctx, method, req)
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return next(ctx, method, req)
			}

			userID, err := resolver.ResolveUser(ctx, token)
			if err != nil || userID == "" {
				return nil, fmt.Errorf("%w: invalid bearer token", errUnauthorized)
			}

			ctx = context.WithValue(ctx, userIDKey, userID)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware injects a fixed user when auth is disabled.
func noAuthMiddleware(defaultUser string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, userIDKey, defaultUser)
			return next(ctx, method, req)
		}
	}
}

// clientMiddleware identifies the client instance by its MCP session, so two
// connected clients of one user keep separate strokes.
func clientMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var clientID string

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				clientID = extra.Header.Get("Mcp-Session-Id")
			}
			if clientID == "" {
				clientID = safeSessionID(req)
			}

			if clientID != "" {
				ctx = context.WithValue(ctx, clientIDKey, clientID)
			}
			return next(ctx, method, req)
		}
	}
}
