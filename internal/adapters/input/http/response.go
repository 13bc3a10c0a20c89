package http

const (
	// RateLimitExceeded is the error code of the 429 body
	RateLimitExceeded = "rate_limit_exceeded"
)

// Response messages
const (
	MessageCheckCompleted  = "Verification completed"
	MessageUnauthorized    = "Identify yourself to access the service"
	MessageRateLimited     = "Please wait a moment before trying again"
	MessagePhoneRequired   = "The phoneNumber field is required"
	MessagePhoneInvalid    = "Invalid number"
	MessageSessionDown     = "WhatsApp session not available"
	MessageSessionDownInfo = "The WhatsApp client is disconnected or not ready"
	MessageCheckFailed     = "Error verifying the number"
	MessageInvalidBody     = "Request body must be JSON"
	MessageInternalError   = "Internal Server Error"
	HealthStatusOK         = "ok"
)

type (
	// ErrorResponse struct - body of every non-2xx answer
	ErrorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message,omitempty"`
	}

	// HealthResponse struct - GET /health
	HealthResponse struct {
		Status            string `json:"status"`
		WhatsappConnected bool   `json:"whatsappConnected"`
		Uptime            string `json:"uptime"`
	}

	// CheckWhatsAppResponse struct - POST /check-whatsapp
	CheckWhatsAppResponse struct {
		Message string           `json:"message"`
		Data    VerificationData `json:"data"`
	}

	// VerificationData struct - result of one check
	VerificationData struct {
		Verification bool   `json:"verification"`
		PhoneNumber  string `json:"phoneNumber"`
		Timestamp    string `json:"timestamp"`
	}

	// SessionResponse struct - GET /session
	SessionResponse struct {
		ClientID       string `json:"clientId"`
		AccountID      string `json:"accountId,omitempty"`
		State          string `json:"state"`
		Ready          bool   `json:"ready"`
		Reconnecting   bool   `json:"reconnecting"`
		ReconnectCount int64  `json:"reconnectCount"`
		QueueWaiting   int    `json:"queueWaiting"`
		QueueInFlight  int    `json:"queueInFlight"`
	}
)
