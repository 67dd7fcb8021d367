package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"threadvote/internal/models"
	"threadvote/internal/store"
	"threadvote/internal/utils"
)

type CommentService struct {
	posts    PostRepository
	comments CommentRepository
}

func NewCommentService(posts PostRepository, comments CommentRepository) *CommentService {
	return &CommentService{posts: posts, comments: comments}
}

// Create adds a comment by identity to postID. Content is required and the post must exist.
func (s *CommentService) Create(ctx context.Context, identity *models.User, postID uint, content string) (models.CommentView, error) {
	if identity == nil {
		return models.CommentView{}, ErrAuthRequired
	}
	if postID == 0 || strings.TrimSpace(content) == "" {
		return models.CommentView{}, invalid("Post ID and content are required")
	}

	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return models.CommentView{}, fmt.Errorf("check post %d: %w", postID, err)
	}
	if !exists {
		return models.CommentView{}, ErrNotFound
	}

	view, err := s.comments.Create(ctx, &models.Comment{
		PostID:  postID,
		UserID:  identity.ID,
		Content: content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// post removed between the check and the insert
			return models.CommentView{}, ErrNotFound
		}
		return models.CommentView{}, fmt.Errorf("create comment: %w", err)
	}
	view.ContentHTML = utils.RenderMarkdown(view.Content)
	return view, nil
}
