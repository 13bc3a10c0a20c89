package http

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sirupsen/logrus"
)

const (
	rateLimitMax    = 60
	rateLimitWindow = time.Minute
)

// RateLimiter func - at most 60 requests per client IP per minute
func RateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        rateLimitMax,
		Expiration: rateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			logrus.Warnf("Rate limit reached for %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:   RateLimitExceeded,
				Message: MessageRateLimited,
			})
		},
	})
}

// BearerAuth func - requires "Authorization: Bearer <token>". An empty token rejects everything.
func BearerAuth(token string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if token != "" && subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: MessageUnauthorized})
		},
	})
}

// Register func - mounts the service routes. The limiter runs before authentication.
func (hdl *HTTPHandler) Register(router fiber.Router, token string) {
	router.Get("/health", hdl.HealthCheck)

	auth := BearerAuth(token)
	router.Post("/check-whatsapp", RateLimiter(), auth, hdl.CheckWhatsApp)
	router.Get("/session", auth, hdl.SessionStatus)
}
