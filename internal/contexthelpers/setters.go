package contexthelpers

import (
	"context"
	"net/http"
)

// AuthenticateContext marks the request as coming from the given user.
func AuthenticateContext(r *http.Request, userID string, displayName string, isAdmin bool) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
	ctx = context.WithValue(ctx, DisplayNameContextKey, displayName)
	ctx = context.WithValue(ctx, IsAdminContextKey, isAdmin)
	return r.WithContext(ctx)
}

func SetRequestID(r *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
	return r.WithContext(ctx)
}
