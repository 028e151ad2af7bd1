package contexthelpers

type contextKey string

const IsAuthenticatedContextKey = contextKey("isAuthenticated")
const AuthenticatedUserIDContextKey = contextKey("authenticatedUserID")
const DisplayNameContextKey = contextKey("displayName")
const IsAdminContextKey = contextKey("isAdmin")
const RequestIDContextKey = contextKey("requestID")
