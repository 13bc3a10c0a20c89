package domain

import "errors"

// Session lifecycle errors

var (
	// ErrInitialization indicates the messaging client could not be constructed or started
	ErrInitialization = errors.New("whatsapp client initialization failed")

	// ErrReadyTimeout indicates the session did not become ready within the deadline
	ErrReadyTimeout = errors.New("READY_TIMEOUT: whatsapp client did not become ready in time")

	// ErrDisconnected indicates the session dropped before reaching ready
	ErrDisconnected = errors.New("DISCONNECTED before ready")

	// ErrAuthFailure indicates the backend rejected the stored credentials. It is not retried.
	ErrAuthFailure = errors.New("whatsapp authentication failure")

	// ErrSessionNotReady indicates a query was attempted while the session is not ready
	ErrSessionNotReady = errors.New("whatsapp session not available")
)

// Query errors

var (
	// ErrBackendQuery indicates a backend call against the session failed
	ErrBackendQuery = errors.New("whatsapp backend call failed")

	// ErrQueueClosed indicates the query queue no longer accepts work
	ErrQueueClosed = errors.New("query queue closed")
)

// Request errors

var (
	// ErrValidation indicates a malformed request
	ErrValidation = errors.New("invalid request")

	// ErrAuthorization indicates a missing or wrong bearer token
	ErrAuthorization = errors.New("unauthorized")

	// ErrRateLimit indicates the caller exceeded the request budget
	ErrRateLimit = errors.New("rate limit exceeded")
)
