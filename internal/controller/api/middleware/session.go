// Package middleware binds per-request caller identity into the request
// context for huma operations.
package middleware

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

// DefaultSessionID buckets callers that do not identify themselves.
const DefaultSessionID = "default"

// HeaderSessionID is the request header carrying the caller's session.
const HeaderSessionID = "X-Session-ID"

// GetSessionID returns the session bound to the request context, falling
// back to the shared default bucket.
func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	if v == "" {
		return DefaultSessionID
	}
	return v
}

// Session reads the X-Session-ID header and stores it in the request
// context. Every job operation downstream scopes its reads and writes to
// this value.
func Session() func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		echoCtx := humaecho.Unwrap(ctx)

		sid := ctx.Header(HeaderSessionID)
		if sid == "" {
			sid = DefaultSessionID
		}

		r := echoCtx.Request()
		echoCtx.SetRequest(r.WithContext(context.WithValue(r.Context(), SessionIDKey, sid)))
		next(ctx)
	}
}
