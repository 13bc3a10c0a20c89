package output

import (
	"time"

	"whatsapp-checker/internal/domain"
)

// SessionRepository interface - Output port
// Persists the session record of an identity label.
type SessionRepository interface {
	// GetSession returns the record for the label, or nil if none exists
	GetSession(clientID string) (*domain.SessionRecord, error)

	// UpdateDevice stores the device JID that holds the label's auth material
	UpdateDevice(clientID, deviceJID string) error

	// UpdateState stores the last lifecycle state. LastReadyAt is set when the state is ready.
	UpdateState(clientID string, state domain.SessionState, at time.Time) error

	// DeleteSession removes the record. Deleting a missing record is not an error.
	DeleteSession(clientID string) error
}
