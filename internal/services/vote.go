package services

import (
	"context"
	"errors"
	"fmt"

	"threadvote/internal/models"
	"threadvote/internal/store"
)

// VoteService is the vote ledger entry point.
type VoteService struct {
	votes VoteRepository
}

func NewVoteService(votes VoteRepository) *VoteService {
	return &VoteService{votes: votes}
}

// Cast records identity's vote on target: a new vote is inserted, the same vote again is
// removed, and an opposite vote replaces the old one. The returned score reflects the change.
func (s *VoteService) Cast(ctx context.Context, identity *models.User, target models.VoteTarget, value int) (models.VoteResult, error) {
	if identity == nil {
		return models.VoteResult{}, ErrAuthRequired
	}
	if target.Validate() != nil {
		return models.VoteResult{}, invalid("Either postId or commentId must be provided, but not both")
	}
	if models.ValidateVoteValue(value) != nil {
		return models.VoteResult{}, invalid("Value must be 1 (upvote) or -1 (downvote)")
	}

	result, err := s.votes.Cast(ctx, identity.ID, target, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.VoteResult{}, ErrNotFound
		}
		return models.VoteResult{}, fmt.Errorf("cast vote on %s %d: %w", target.Kind, target.ID, err)
	}
	return result, nil
}
