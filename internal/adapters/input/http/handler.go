package http

import (
	"errors"
	"time"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/input"
	"whatsapp-checker/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv       input.WhatsAppChecker
	session   input.SessionStatus
	validator validator.Validator
	startedAt time.Time
}

// New func - Creates new HTTP handler
func New(srv input.WhatsAppChecker, session input.SessionStatus) *HTTPHandler {
	return &HTTPHandler{
		srv:       srv,
		session:   session,
		validator: validator.New(),
		startedAt: time.Now(),
	}
}

// HealthCheck godoc
// @Summary Service health
// @Description Liveness plus the readiness of the WhatsApp session. Always 200.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{
		Status:            HealthStatusOK,
		WhatsappConnected: hdl.session.IsReady(),
		Uptime:            domain.HumanizeDuration(time.Since(hdl.startedAt)),
	})
}

// CheckWhatsApp godoc
// @Summary Check a phone number
// @Description Reports whether the phone number has a WhatsApp account
// @Tags WhatsApp
// @Accept application/json
// @Produce json
// @Security BearerAuth
// @param CheckWhatsApp body CheckWhatsAppRequest true "CheckWhatsApp"
// @Success 200 {object} CheckWhatsAppResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /check-whatsapp [post]
func (hdl *HTTPHandler) CheckWhatsApp(c *fiber.Ctx) error {
	var request CheckWhatsAppRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Warnln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: MessageInvalidBody})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		if validator.FailedTag(err) == "required" {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: MessagePhoneRequired})
		}
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: MessagePhoneInvalid})
	}

	result, err := hdl.srv.CheckNumber(c.UserContext(), domain.CheckRequest{PhoneNumber: request.PhoneNumber})
	if err != nil {
		if code := StatusCode(err); code == fiber.StatusServiceUnavailable {
			return c.Status(code).JSON(ErrorResponse{
				Error:   MessageSessionDown,
				Message: MessageSessionDownInfo,
			})
		}
		logrus.Errorf("Error checking %s: %v", request.PhoneNumber, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   MessageCheckFailed,
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(CheckWhatsAppResponse{
		Message: MessageCheckCompleted,
		Data: VerificationData{
			Verification: result.Verification,
			PhoneNumber:  request.PhoneNumber,
			Timestamp:    domain.FormatTimestamp(result.Timestamp),
		},
	})
}

// SessionStatus godoc
// @Summary Session state
// @Description Lifecycle state of the WhatsApp session and the query queue
// @Tags WhatsApp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse
// @Router /session [get]
func (hdl *HTTPHandler) SessionStatus(c *fiber.Ctx) error {
	status := hdl.session.Status()
	return c.Status(fiber.StatusOK).JSON(SessionResponse{
		ClientID:       status.ClientID,
		AccountID:      status.AccountID,
		State:          status.State.String(),
		Ready:          status.Ready,
		Reconnecting:   status.Reconnecting,
		ReconnectCount: status.ReconnectCount,
		QueueWaiting:   status.QueueWaiting,
		QueueInFlight:  status.QueueInFlight,
	})
}

// StatusCode func - maps the domain error taxonomy onto HTTP status codes
func StatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrAuthorization):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimit):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrSessionNotReady):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler func - answers errors escaping the handlers with an ErrorResponse
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusCode(err)
	message := MessageInternalError
	if code != fiber.StatusInternalServerError {
		message = err.Error()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logrus.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: message})
}
