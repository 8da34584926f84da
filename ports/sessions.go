package ports

import (
	"tablecast/domain/core"
	"tablecast/domain/transform"
)

// SessionStore keeps transform sessions for the life of the process.
// Nothing is persisted: restarting the process drops every session, and a
// re-upload replaces the caller's session wholesale.
type SessionStore interface {
	// Save stores or replaces a session under its ID
	Save(s *transform.Session)

	// Get retrieves a session by ID
	Get(id core.SessionID) (*transform.Session, error)

	// Delete removes a session; deleting an unknown ID is a no-op
	Delete(id core.SessionID)

	// Count returns the number of live sessions
	Count() int
}
