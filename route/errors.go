package route

import (
	"net/http"

	"jsonapi/domain"
	"jsonapi/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body written when a pipeline halts.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondError maps a stage error to its status and writes the error body.
// Server errors get a generic message; the cause is only logged.
func RespondError(c *gin.Context, err error) {
	status := domain.StatusCode(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("code", domain.Code(err)).Msg("request failed")
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     msg,
		Code:      domain.Code(err),
		Status:    status,
		RequestID: middleware.GetRequestID(c),
	})
}
