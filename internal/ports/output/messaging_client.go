package output

import (
	"context"

	"whatsapp-checker/internal/domain"
)

// MessagingClient interface - Output port
// Constructs sessions against the WhatsApp backend. Each call returns a fresh handle;
// handles are never reused after Destroy.
type MessagingClient interface {
	// NewSession constructs a backend client for the identity label. It returns once the
	// handle exists, not once it is connected.
	NewSession(ctx context.Context, clientID string) (MessagingSession, error)
}

// MessagingSession interface - Output port
// One live backend handle. It is not safe for concurrent queries; callers serialize
// IsRegistered through the query queue.
type MessagingSession interface {
	// Connect starts the connection. Progress is reported on Events.
	Connect(ctx context.Context) error

	// Events delivers lifecycle events in backend emission order
	Events() <-chan domain.LifecycleEvent

	// IsFullyConnected polls the backend connection state
	IsFullyConnected() bool

	// AccountID returns the user id of the connected account, empty until paired
	AccountID() string

	// IsRegistered checks whether the identifier has a WhatsApp account.
	// Failures wrap domain.ErrBackendQuery.
	IsRegistered(ctx context.Context, identifier string) (bool, error)

	// SendText sends a text message to the identifier. Failures wrap domain.ErrBackendQuery.
	SendText(ctx context.Context, identifier, text string) error

	// Destroy tears the handle down. It never fails from the caller's perspective.
	Destroy()
}
