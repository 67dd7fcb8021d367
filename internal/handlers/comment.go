package handlers

import (
	"net/http"

	"threadvote/internal/middleware"
	"threadvote/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type createCommentRequest struct {
	PostID  uint   `json:"postId" form:"postId"`
	Content string `json:"content" form:"content"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), middleware.Session(c).Identity(), req.PostID, req.Content)
	if err != nil {
		respondError(c, h.log, err, "Post not found", "Failed to create comment")
		return
	}
	c.JSON(http.StatusOK, comment)
}
