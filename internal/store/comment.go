package store

import (
	"context"

	"threadvote/internal/models"

	"gorm.io/gorm"
)

// CommentRepository handles persistence and score aggregation for comments.
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts the comment and fills in its author name. A missing post yields ErrNotFound.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (models.CommentView, error) {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.CommentView{}, translate(err)
	}

	var author string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", comment.UserID).
		Pluck("username", &author).Error; err != nil {
		return models.CommentView{}, err
	}

	return models.CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		Author:    author,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// ListByPost returns a post's comments, newest first, each with its own vote score.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	comments := make([]models.CommentView, 0)
	err := r.db.WithContext(ctx).
		Table("comments c").
		Select(`c.id, c.post_id, c.content, c.user_id, u.username AS author, c.created_at,
			(SELECT COALESCE(SUM(v.value), 0) FROM votes v WHERE v.comment_id = c.id) AS vote_score`).
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.post_id = ?", postID).
		Order("c.created_at DESC, c.id DESC").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
