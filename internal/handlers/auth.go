package handlers

import (
	"net/http"

	"threadvote/internal/auth"
	"threadvote/internal/middleware"
	"threadvote/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth     *services.AuthService
	sessions *auth.Manager
	log      *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, sessions *auth.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, log: log}
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, "", "An error occurred during registration")
		return
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		respondError(c, h.log, err, "", "An error occurred during registration")
		return
	}
	h.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, "", "An error occurred during login")
		return
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		respondError(c, h.log, err, "", "An error occurred during login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Clear(c); err != nil {
		respondError(c, h.log, err, "", "An error occurred during logout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the signed-in user, or 401.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := middleware.Session(c).RequireIdentity()
	if err != nil {
		writeError(c, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
