package domain

import "time"

// SessionState is the lifecycle state of the single WhatsApp session
type SessionState int

const (
	// SessionStateUninitialized - no session has been constructed yet
	SessionStateUninitialized SessionState = iota
	// SessionStateInitializing - a session handle exists and is connecting
	SessionStateInitializing
	// SessionStateAwaitingPairing - a QR challenge was issued and is waiting for a scan
	SessionStateAwaitingPairing
	// SessionStateAuthenticating - credentials accepted, waiting for ready
	SessionStateAuthenticating
	// SessionStateReady - fully connected, queries are allowed
	SessionStateReady
	// SessionStateDisconnected - the session dropped
	SessionStateDisconnected
	// SessionStateReconnecting - the previous handle is being replaced
	SessionStateReconnecting
	// SessionStateAuthFailed - terminal, needs operator intervention
	SessionStateAuthFailed
)

var sessionStateNames = map[SessionState]string{
	SessionStateUninitialized:   "uninitialized",
	SessionStateInitializing:    "initializing",
	SessionStateAwaitingPairing: "awaiting_pairing",
	SessionStateAuthenticating:  "authenticating",
	SessionStateReady:           "ready",
	SessionStateDisconnected:    "disconnected",
	SessionStateReconnecting:    "reconnecting",
	SessionStateAuthFailed:      "auth_failed",
}

// String returns the state name
func (s SessionState) String() string {
	if name, ok := sessionStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// LifecycleEventType represents the type of event emitted by the messaging backend
type LifecycleEventType string

const (
	// LifecycleEventQR - a pairing challenge was issued
	LifecycleEventQR LifecycleEventType = "qr"
	// LifecycleEventAuthenticated - stored or freshly paired credentials were accepted
	LifecycleEventAuthenticated LifecycleEventType = "authenticated"
	// LifecycleEventReady - the session is usable
	LifecycleEventReady LifecycleEventType = "ready"
	// LifecycleEventDisconnected - the connection dropped
	LifecycleEventDisconnected LifecycleEventType = "disconnected"
	// LifecycleEventAuthFailure - credentials were rejected
	LifecycleEventAuthFailure LifecycleEventType = "auth_failure"
)

// LifecycleEvent is one signal from the messaging backend about its session
type LifecycleEvent struct {
	Type   LifecycleEventType
	Reason string // disconnected / auth_failure
	QRCode string // qr
}

// SessionRecord persists what the service knows about the session of one identity label.
// The auth material itself lives in the backend's device store, keyed by DeviceJID.
type SessionRecord struct {
	ClientID    string     `gorm:"type:varchar(100);primary_key;"`
	DeviceJID   string     `gorm:"type:varchar(150)"`
	State       string     `gorm:"type:varchar(30);not null;default:'uninitialized'"`
	LastReadyAt *time.Time `gorm:"type:timestamp"`
	CreatedAt   time.Time  `gorm:"type:timestamp"`
	UpdatedAt   time.Time  `gorm:"type:timestamp"`
}

// TableName func
func (r *SessionRecord) TableName() string {
	return "whatsapp_sessions"
}

// SessionStatus is a point-in-time view of the controller for diagnostics
type SessionStatus struct {
	ClientID       string
	AccountID      string
	State          SessionState
	Ready          bool
	Reconnecting   bool
	ReconnectCount int64
	QueueWaiting   int
	QueueInFlight  int
}
