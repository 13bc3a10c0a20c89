package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// CheckRequest struct - Domain request DTO for a registration check
	CheckRequest struct {
		PhoneNumber string
	}

	// Query struct - one registration check against the current session
	Query struct {
		ID          uuid.UUID
		PhoneNumber string // as received
		Identifier  string // normalized, with domain suffix
		EnqueuedAt  time.Time
	}

	// CheckResult struct - Domain response DTO for a registration check
	CheckResult struct {
		Verification bool
		PhoneNumber  string
		Identifier   string
		Timestamp    time.Time
	}

	// HealthReport struct - liveness message sent through the session
	HealthReport struct {
		To        string
		AccountID string
		Text      string
	}
)

// NewQuery creates a query for an already normalized identifier
func NewQuery(phoneNumber, identifier string) Query {
	return Query{
		ID:          uuid.New(),
		PhoneNumber: phoneNumber,
		Identifier:  identifier,
		EnqueuedAt:  time.Now(),
	}
}
