package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/translation"
)

// errNotConfigured marks a feature whose backing service has no credentials
var errNotConfigured = errors.New("feature not configured")

// errorResponse writes the {error, code} body used by every endpoint
func errorResponse(c *fiber.Ctx, status int, message, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transcript.ErrInvalidVideoID):
		return errorResponse(c, fiber.StatusBadRequest, "Invalid YouTube URL or video ID", "ERR_INVALID_URL")
	case errors.Is(err, analysis.ErrEmptyTranscript):
		return errorResponse(c, fiber.StatusBadRequest, "Transcript cannot be empty", "ERR_EMPTY_TRANSCRIPT")
	case errors.Is(err, translation.ErrUnsupportedLanguage):
		return errorResponse(c, fiber.StatusBadRequest, err.Error(), "ERR_UNSUPPORTED_LANGUAGE")
	case errors.Is(err, analysis.ErrMalformedOutput):
		return errorResponse(c, fiber.StatusBadGateway, err.Error(), "ERR_MALFORMED_OUTPUT")
	case errors.Is(err, session.ErrNoSession):
		return errorResponse(c, fiber.StatusNotFound, "No active session", "ERR_NO_SESSION")
	case errors.Is(err, session.ErrNotReady):
		return errorResponse(c, fiber.StatusConflict, "Session has no transcript yet", "ERR_NOT_READY")
	case errors.Is(err, session.ErrSuperseded):
		return errorResponse(c, fiber.StatusConflict, "Session was replaced by a newer analysis", "ERR_SUPERSEDED")
	case errors.Is(err, errNotConfigured), errors.Is(err, session.ErrUnavailable):
		return errorResponse(c, fiber.StatusServiceUnavailable, err.Error(), "ERR_NOT_CONFIGURED")
	default:
		return errorResponse(c, fiber.StatusInternalServerError, err.Error(), "ERR_INTERNAL")
	}
}
