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

// PostDetail is a single post with its comments.
type PostDetail struct {
	Post     models.PostView      `json:"post"`
	Comments []models.CommentView `json:"comments"`
}

// PostService creates posts and serves the scored read models.
type PostService struct {
	posts    PostRepository
	comments CommentRepository
	votes    VoteRepository
}

func NewPostService(posts PostRepository, comments CommentRepository, votes VoteRepository) *PostService {
	return &PostService{posts: posts, comments: comments, votes: votes}
}

// Create stores a post for identity. Title is required; content may be empty.
func (s *PostService) Create(ctx context.Context, identity *models.User, title, content string) (models.PostView, error) {
	if identity == nil {
		return models.PostView{}, ErrAuthRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.PostView{}, invalid("Title is required")
	}

	post := models.Post{
		UserID:  identity.ID,
		Title:   title,
		Content: content,
	}
	if err := s.posts.Create(ctx, &post); err != nil {
		return models.PostView{}, fmt.Errorf("create post: %w", err)
	}

	return models.PostView{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		ContentHTML: utils.RenderMarkdown(post.Content),
		UserID:      post.UserID,
		Author:      identity.Username,
		CreatedAt:   post.CreatedAt,
	}, nil
}

// List returns all posts newest first. viewerID 0 is an anonymous viewer.
func (s *PostService) List(ctx context.Context, viewerID uint) ([]models.PostView, error) {
	posts, err := s.posts.ListWithScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	var viewerVotes map[uint]int
	if viewerID != 0 {
		if viewerVotes, err = s.votes.PostVotesByUser(ctx, viewerID); err != nil {
			return nil, fmt.Errorf("load viewer votes: %w", err)
		}
	}

	for i := range posts {
		posts[i].UserVote = viewerVotes[posts[i].ID]
		posts[i].ContentHTML = utils.RenderMarkdown(posts[i].Content)
	}
	return posts, nil
}

// Get returns one post with its comments, scored independently.
func (s *PostService) Get(ctx context.Context, postID, viewerID uint) (PostDetail, error) {
	post, err := s.posts.GetWithScore(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PostDetail{}, ErrNotFound
		}
		return PostDetail{}, fmt.Errorf("load post %d: %w", postID, err)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return PostDetail{}, fmt.Errorf("list comments for post %d: %w", postID, err)
	}

	if viewerID != 0 {
		userVote, err := s.votes.UserVote(ctx, viewerID, models.PostTarget(post.ID))
		if err != nil {
			return PostDetail{}, fmt.Errorf("load viewer vote: %w", err)
		}
		post.UserVote = userVote

		ids := make([]uint, len(comments))
		for i, c := range comments {
			ids[i] = c.ID
		}
		commentVotes, err := s.votes.CommentVotesByUser(ctx, viewerID, ids)
		if err != nil {
			return PostDetail{}, fmt.Errorf("load viewer comment votes: %w", err)
		}
		for i := range comments {
			comments[i].UserVote = commentVotes[comments[i].ID]
		}
	}

	post.ContentHTML = utils.RenderMarkdown(post.Content)
	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
	}
	return PostDetail{Post: post, Comments: comments}, nil
}
