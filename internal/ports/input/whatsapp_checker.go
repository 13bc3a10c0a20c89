package input

import (
	"context"

	"whatsapp-checker/internal/domain"
)

// WhatsAppChecker interface - Input port (use case)
// Defines what the application can answer about phone numbers
type WhatsAppChecker interface {
	// CheckNumber reports whether the phone number is registered on WhatsApp.
	// It fails with domain.ErrSessionNotReady without touching the backend while unready.
	CheckNumber(ctx context.Context, request domain.CheckRequest) (*domain.CheckResult, error)
}

// SessionStatus interface - Input port
// Read-only view of the session lifecycle
type SessionStatus interface {
	IsReady() bool
	Status() domain.SessionStatus
}
