package handlers

import (
	"net/http"

	"threadvote/internal/middleware"
	"threadvote/internal/services"
	"threadvote/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	posts *services.PostService
	log   *zap.Logger
}

func NewPostHandler(posts *services.PostService, log *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, log: log}
}

type createPostRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// List returns every post, newest first, annotated with the viewer's votes.
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), middleware.Session(c).ViewerID())
	if err != nil {
		respondError(c, h.log, err, "", "Failed to fetch posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.Session(c).Identity(), req.Title, req.Content)
	if err != nil {
		respondError(c, h.log, err, "", "Failed to create post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Detail returns {post, comments}.
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "Post not found")
		return
	}

	detail, err := h.posts.Get(c.Request.Context(), id, middleware.Session(c).ViewerID())
	if err != nil {
		respondError(c, h.log, err, "Post not found", "Failed to fetch post")
		return
	}
	c.JSON(http.StatusOK, detail)
}
