package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "pass-questions context key " + string(c)
}

const (
	// UserIDKey carries the identity-provider uid of the signed-in user.
	UserIDKey = contextKey("userID")
	// UserEmailKey carries the email of the signed-in user.
	UserEmailKey = contextKey("userEmail")
	// UserRoleKey carries the role ("admin" or "user") from the session.
	UserRoleKey = contextKey("userRole")
	// SessionIDKey carries the server-side session token bound to the cookie.
	SessionIDKey = contextKey("sessionID")
	// RequestIDKey is set by the request-id middleware.
	RequestIDKey = contextKey("requestID")
	ComponentKey = contextKey("component")
	OperationKey = contextKey("operation")
)
