package middleware

import (
	"net/http"
	"strings"

	"threadvote/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionContextKey = "session_context"

// LoadSession resolves the request's identity once and stores it for handlers.
// Anonymous requests continue; only a failing session backend aborts.
func LoadSession(m *auth.Manager, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc, err := m.Resolve(c)
		if err != nil {
			log.Error("resolve session failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(sessionContextKey, sc)
		c.Next()
	}
}

// Session returns the identity LoadSession resolved, or an anonymous context.
func Session(c *gin.Context) auth.SessionContext {
	if v, ok := c.Get(sessionContextKey); ok {
		if sc, ok := v.(auth.SessionContext); ok {
			return sc
		}
	}
	return auth.Anonymous()
}

// AuthRequired rejects anonymous requests: browsers are sent to /login, API clients get 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := Session(c).RequireIdentity(); err != nil {
			if WantsHTML(c) {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// WantsHTML reports whether the client prefers an HTML page over JSON.
func WantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
