package services

import (
	"context"

	"threadvote/internal/models"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// PostRepository defines persistence and aggregation for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	ListWithScores(ctx context.Context) ([]models.PostView, error)
	GetWithScore(ctx context.Context, id uint) (models.PostView, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// CommentRepository defines persistence and aggregation for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (models.CommentView, error)
	ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error)
}

// VoteRepository applies votes atomically and reports per-user vote state.
type VoteRepository interface {
	Cast(ctx context.Context, userID uint, target models.VoteTarget, value int) (models.VoteResult, error)
	UserVote(ctx context.Context, userID uint, target models.VoteTarget) (int, error)
	PostVotesByUser(ctx context.Context, userID uint) (map[uint]int, error)
	CommentVotesByUser(ctx context.Context, userID uint, commentIDs []uint) (map[uint]int, error)
}
