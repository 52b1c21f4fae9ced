package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/medportal/portal-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	TraceID string   `json:"trace_id,omitempty"`
}

// ErrorHandler renders errors attached via c.Error. Application errors map
// to their own status and surface field lists; everything else becomes a
// generic 500 so internals never leak to the caller.
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

		lastErr := c.Errors.Last()

		if appErr, ok := apperrors.From(lastErr.Err); ok {
			c.JSON(appErr.StatusCode(), ErrorResponse{
				Status:  "error",
				Message: appErr.Message,
				Fields:  appErr.Fields,
				TraceID: requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: "internal server error",
			TraceID: requestID,
		})
	}
}
