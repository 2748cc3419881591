package auth

// EventKind labels an auth-state change delivered to subscribers.
type EventKind string

const (
	EventSignedIn       EventKind = "SIGNED_IN"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
	EventSignedOut      EventKind = "SIGNED_OUT"
)

// Event is an auth-state change. User is nil for EventSignedOut.
type Event struct {
	Kind EventKind
	User *User
}
