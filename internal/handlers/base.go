package handlers

import (
	"errors"
	"net/http"

	"threadvote/internal/middleware"
	"threadvote/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgBadRequest   = "Invalid request body"
	msgAuthRequired = "Authentication required"
)

// respondError maps a service error onto a status and the {"error": ...} envelope.
// Unrecognised errors are logged and reported with the generic internal message.
func respondError(c *gin.Context, log *zap.Logger, err error, notFound, internal string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrAuthRequired):
		if middleware.WantsHTML(c) {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		writeError(c, http.StatusUnauthorized, msgAuthRequired)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrDuplicate):
		writeError(c, http.StatusConflict, "Username or email already exists")
	case errors.Is(err, services.ErrNotFound):
		writeError(c, http.StatusNotFound, notFound)
	default:
		_ = c.Error(err)
		log.Error(internal,
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusInternalServerError, internal)
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
