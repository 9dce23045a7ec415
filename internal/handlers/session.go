package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fraud-assessment-service/internal/services"
	"fraud-assessment-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	SessionCookie = "fraud_session"
	SessionHeader = "X-Session-ID"

	sessionLocal = "session_id"
)

// SessionMiddleware resolves the caller's session id from the header or
// cookie. Missing or malformed ids are replaced with a fresh one, which is
// also sent back as a cookie.
func SessionMiddleware(ttl time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = c.Cookies(SessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = services.NewSessionID()
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionLocal, id)
		c.Set(SessionHeader, id)
		return c.Next()
	}
}

func sessionID(c fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}

// statusFor maps service errors onto HTTP status and API error code.
func statusFor(err error) (int, string) {
	var verr *services.ValidationFailedError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, utils.CodeValidation
	case errors.Is(err, services.ErrUnknownModel):
		return http.StatusBadRequest, utils.CodeUnknownModel
	case errors.Is(err, services.ErrNoAssessment):
		return http.StatusNotFound, utils.CodeNoAssessment
	case errors.Is(err, services.ErrAssetsUnavailable):
		return http.StatusServiceUnavailable, utils.CodeAssetsUnavailable
	default:
		return http.StatusInternalServerError, utils.CodeInternal
	}
}

func writeServiceError(c fiber.Ctx, err error) error {
	status, code := statusFor(err)

	var verr *services.ValidationFailedError
	if errors.As(err, &verr) {
		return c.Status(status).JSON(utils.CreateValidationErrorResponse(verr.Error(), verr.Fields))
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "session_id", sessionID(c), "error", err)
		return c.Status(status).JSON(utils.CreateErrorResponse(code, "Internal server error"))
	}
	return c.Status(status).JSON(utils.CreateErrorResponse(code, err.Error()))
}
