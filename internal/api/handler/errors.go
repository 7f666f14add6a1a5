package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/service"
)

const msgInternalError = "Internal server error"

// statusFor maps an operation error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": message}. Messages of unclassified errors are not exposed.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var opErr *service.Error
	if !errors.As(err, &opErr) {
		logger.CtxError(c.Request.Context(), "Request failed: %v", err)
		c.JSON(status, gin.H{"error": msgInternalError})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.CtxError(c.Request.Context(), "Upstream failure: %v", err)
	}
	c.JSON(status, gin.H{"error": opErr.Message})
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	logger.CtxWarn(c.Request.Context(), "Invalid request body: client_ip=%s, error=%v", c.ClientIP(), err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
