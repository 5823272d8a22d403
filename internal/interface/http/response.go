package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/studyhub/internal/domain/shared"
	"github.com/alem-hub/studyhub/pkg/logger"
)

// Response is the envelope of every API reply.
type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Error codes carried in Response.Error.
const (
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInsufficientFunds = "insufficient_funds"
	CodeForbidden         = "forbidden"
	CodeUnauthenticated   = "unauthenticated"
	CodeInvalidInput      = "invalid_input"
	CodeBusy              = "busy"
	CodeTimeout           = "timeout"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal_error"
)

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{OK: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{OK: false, Message: message, Error: code})
}

// respondErr maps a domain or infrastructure error onto a status and code.
func respondErr(c *gin.Context, err error) {
	status, code := classify(err)
	msg := shared.MessageOf(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			logger.String("path", c.FullPath()), logger.Err(err))
		msg = "internal error"
	}
	respondError(c, status, code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrInvalidIdentity):
		return http.StatusUnauthorized, CodeUnauthenticated
	case shared.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case shared.IsInsufficientFunds(err):
		return http.StatusUnprocessableEntity, CodeInsufficientFunds
	case shared.IsConflict(err):
		return http.StatusConflict, CodeConflict
	case shared.IsForbidden(err):
		return http.StatusForbidden, CodeForbidden
	case shared.IsValidation(err):
		return http.StatusBadRequest, CodeInvalidInput
	case shared.IsRetryable(err):
		return http.StatusServiceUnavailable, CodeBusy
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondBindError reports a request body that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "malformed request body")
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	respondError(c, http.StatusBadRequest, CodeInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case tagSkillLevel:
		return shared.MessageOf(shared.ErrInvalidSkillLevel)
	case tagResourceType:
		return shared.MessageOf(shared.ErrInvalidResourceType)
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
