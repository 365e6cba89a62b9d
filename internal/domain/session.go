package domain

// SessionStore maps a chat session to its pending request. A session
// holds at most one unconsumed URL; a new URL overwrites the old pending
// one. Implementations must be safe for concurrent use across sessions,
// with each session's slot independent of the others.
type SessionStore interface {
	// Put stores the pending request for a session, replacing any
	// previous one.
	Put(sessionID int64, pending Pending)

	// Take removes and returns the pending request for a session. The
	// second return is false when the session has nothing pending, which
	// callers must report as an expired link rather than drop silently.
	Take(sessionID int64) (Pending, bool)
}
