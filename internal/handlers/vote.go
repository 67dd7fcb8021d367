package handlers

import (
	"net/http"

	"threadvote/internal/middleware"
	"threadvote/internal/models"
	"threadvote/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoteHandler struct {
	votes *services.VoteService
	log   *zap.Logger
}

func NewVoteHandler(votes *services.VoteService, log *zap.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, log: log}
}

type castVoteRequest struct {
	PostID    *uint `json:"postId" form:"postId"`
	CommentID *uint `json:"commentId" form:"commentId"`
	Value     int   `json:"value" form:"value"`
}

// Cast applies an up or down vote and returns {voteScore, userVote}.
func (h *VoteHandler) Cast(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	target, err := models.NewVoteTarget(req.PostID, req.CommentID)
	if err != nil {
		writeError(c, http.StatusBadRequest, "Either postId or commentId must be provided, but not both")
		return
	}

	result, err := h.votes.Cast(c.Request.Context(), middleware.Session(c).Identity(), target, req.Value)
	if err != nil {
		respondError(c, h.log, err, "Vote target not found", "Failed to vote")
		return
	}
	c.JSON(http.StatusOK, result)
}
