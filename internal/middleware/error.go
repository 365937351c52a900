package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jefersonOS/barber-pro/pkg/errors"
)

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// statusOf maps the error taxonomy to HTTP statuses. Conflicts are
// 409: the caller should pick another slot, not retry the same one.
func statusOf(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrBadRequest, apperrors.ErrInvalidPhone:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrSlotUnavailable, apperrors.ErrInvalidTransition:
		return http.StatusConflict
	case apperrors.ErrHoldExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler converts errors attached to the context into the
// standard response and keeps store internals out of the body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		lastErr := c.Errors.Last().Err
		status := statusOf(lastErr)

		// Only the AppError message reaches the client; wrapped store
		// errors stay in the log.
		message := "internal server error"
		if status != http.StatusInternalServerError {
			var appErr *apperrors.AppError
			if errors.As(lastErr, &appErr) {
				message = appErr.Message
			} else {
				message = lastErr.Error()
			}
		}

		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: message,
			TraceID: requestID,
		})
	}
}
