package core

import "github.com/dkeye/Relay/internal/domain"

// PresenceStore maps a user to the connection that currently reaches it.
// At most one connection per user; the latest SetPresence wins.
type PresenceStore interface {
	SetPresence(user domain.UserID, conn ConnID)
	Lookup(user domain.UserID) (ConnID, bool)
	// ClearIfCurrent deletes the entry only while it still points at conn.
	// It reports whether an entry was removed.
	ClearIfCurrent(user domain.UserID, conn ConnID) bool
	Count() int
}
