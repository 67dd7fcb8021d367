package store

import (
	"context"
	"errors"
	"time"

	"threadvote/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// castAttempts bounds retries when a concurrent first vote from the same user wins the insert.
const castAttempts = 3

// ErrVoteContention is returned when the cast keeps colliding with concurrent casts.
var ErrVoteContention = errors.New("vote contention")

// VoteRepository owns the votes table and its one-vote-per-user-per-target rule.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Cast applies the toggle/flip/insert transition for (userID, target) and returns the
// recomputed score in the same transaction.
func (r *VoteRepository) Cast(ctx context.Context, userID uint, target models.VoteTarget, value int) (models.VoteResult, error) {
	for attempt := 0; attempt < castAttempts; attempt++ {
		result, err := r.castOnce(ctx, userID, target, value)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// the other insert has committed; re-read it and transition from there
			continue
		}
		return result, translate(err)
	}
	return models.VoteResult{}, ErrVoteContention
}

func (r *VoteRepository) castOnce(ctx context.Context, userID uint, target models.VoteTarget, value int) (models.VoteResult, error) {
	var result models.VoteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Vote
		var current *models.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			Where(target.Column()+" = ?", target.ID).
			Take(&existing).Error
		switch {
		case err == nil:
			current = &existing
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		action, userVote := models.ResolveVote(current, value)
		switch action {
		case models.VoteInsert:
			vote := models.NewVote(userID, target, value)
			if err := tx.Omit(clause.Associations).Create(&vote).Error; err != nil {
				return err
			}
		case models.VoteDelete:
			if err := tx.Delete(&models.Vote{}, existing.ID).Error; err != nil {
				return err
			}
		case models.VoteUpdate:
			if err := tx.Model(&models.Vote{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error; err != nil {
				return err
			}
		}

		score, err := sumVotes(tx, target)
		if err != nil {
			return err
		}
		result = models.VoteResult{VoteScore: score, UserVote: userVote}
		return nil
	})
	return result, err
}

func sumVotes(tx *gorm.DB, target models.VoteTarget) (int64, error) {
	var score int64
	err := tx.Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where(target.Column()+" = ?", target.ID).
		Scan(&score).Error
	return score, err
}

type targetVote struct {
	TargetID uint
	Value    int
}

// PostVotesByUser maps post id to the user's vote for every post they voted on.
func (r *VoteRepository) PostVotesByUser(ctx context.Context, userID uint) (map[uint]int, error) {
	var rows []targetVote
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("post_id AS target_id, value").
		Where("user_id = ? AND post_id IS NOT NULL", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toVoteMap(rows), nil
}

// CommentVotesByUser maps comment id to the user's vote, restricted to commentIDs.
// The id list is bound as a parameter.
func (r *VoteRepository) CommentVotesByUser(ctx context.Context, userID uint, commentIDs []uint) (map[uint]int, error) {
	if len(commentIDs) == 0 {
		return map[uint]int{}, nil
	}
	var rows []targetVote
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("comment_id AS target_id, value").
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toVoteMap(rows), nil
}

// UserVote returns userID's vote on target, 0 when there is none.
func (r *VoteRepository) UserVote(ctx context.Context, userID uint, target models.VoteTarget) (int, error) {
	var values []int
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ?", userID).
		Where(target.Column()+" = ?", target.ID).
		Limit(1).
		Pluck("value", &values).Error
	if err != nil || len(values) == 0 {
		return 0, err
	}
	return values[0], nil
}

func toVoteMap(rows []targetVote) map[uint]int {
	votes := make(map[uint]int, len(rows))
	for _, row := range rows {
		votes[row.TargetID] = row.Value
	}
	return votes
}
