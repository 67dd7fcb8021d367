package store

import (
	"context"

	"threadvote/internal/models"

	"gorm.io/gorm"
)

// PostRepository handles persistence and score aggregation for posts.
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Scores come from correlated subqueries so comment and vote rows never multiply each other.
const postViewColumns = `p.id, p.title, p.content, p.user_id, u.username AS author, p.created_at,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
	(SELECT COALESCE(SUM(v.value), 0) FROM votes v WHERE v.post_id = p.id) AS vote_score`

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

// ListWithScores returns every post, newest first, with comment count and vote score.
func (r *PostRepository) ListWithScores(ctx context.Context) ([]models.PostView, error) {
	posts := make([]models.PostView, 0)
	err := r.db.WithContext(ctx).
		Table("posts p").
		Select(postViewColumns).
		Joins("JOIN users u ON u.id = p.user_id").
		Order("p.created_at DESC, p.id DESC").
		Scan(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) GetWithScore(ctx context.Context, id uint) (models.PostView, error) {
	var posts []models.PostView
	err := r.db.WithContext(ctx).
		Table("posts p").
		Select(postViewColumns).
		Joins("JOIN users u ON u.id = p.user_id").
		Where("p.id = ?", id).
		Limit(1).
		Scan(&posts).Error
	if err != nil {
		return models.PostView{}, err
	}
	if len(posts) == 0 {
		return models.PostView{}, ErrNotFound
	}
	return posts[0], nil
}

func (r *PostRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
