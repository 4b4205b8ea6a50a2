package gravepaint

import "context"

type Key string

const (
	// IdentityKey stashes the user ID of the logged-in user for outgoing backend calls.
	IdentityKey Key = "IdentityKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled by gravepaint.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "gravepaint context key: " + string(k)
}

// NewIdentityContext adds the user ID to ctx, returning the resulting context.
// An empty userID leaves ctx untouched.
func NewIdentityContext(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}

	return context.WithValue(ctx, IdentityKey, userID)
}

// IdentityFromContext retrieves the user ID set in ctx by NewIdentityContext.
func IdentityFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	id, ok := ctx.Value(IdentityKey).(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}
