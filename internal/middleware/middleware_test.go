package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"threadvote/internal/auth"
	"threadvote/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withSession(sc auth.SessionContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionContextKey, sc)
		c.Next()
	}
}

func guarded(sc auth.SessionContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSession(sc))
	r.POST("/protected", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	tests := []struct {
		name       string
		session    auth.SessionContext
		accept     string
		wantStatus int
	}{
		{"anonymous api client", auth.Anonymous(), "application/json", http.StatusUnauthorized},
		{"anonymous without accept", auth.Anonymous(), "", http.StatusUnauthorized},
		{"anonymous browser", auth.Anonymous(), "text/html,application/xhtml+xml", http.StatusFound},
		{"signed in", auth.Authenticated(models.User{ID: 1}, "sid"), "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			guarded(tt.session).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Code == http.StatusFound && w.Header().Get("Location") != "/login" {
				t.Errorf("redirect to %q", w.Header().Get("Location"))
			}
			if w.Code == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"error"`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestSessionDefaultsToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if Session(c).Identity() != nil {
		t.Error("expected anonymous session")
	}
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "kaboom") {
		t.Error("panic detail leaked to client")
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("panic not logged")
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	entries := logs.FilterMessage("request").All()
	if len(entries) != 2 {
		t.Fatalf("request log lines = %d, want 2", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Errorf("500 logged at %s", entries[0].Level)
	}
}
