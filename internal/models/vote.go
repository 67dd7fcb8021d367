package models

import (
	"errors"
	"time"
)

// Vote is one user's +1/-1 on exactly one post or comment.
// Absence of a row is the neutral state; there is no stored zero vote.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    *uint     `gorm:"index;check:chk_votes_single_target,(post_id IS NULL) <> (comment_id IS NULL)" json:"post_id,omitempty"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentID *uint     `gorm:"index" json:"comment_id,omitempty"`
	Comment   *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Value     int       `gorm:"not null;check:chk_votes_value,value IN (1,-1)" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	Upvote   = 1
	Downvote = -1
)

var (
	ErrInvalidTarget    = errors.New("either postId or commentId must be provided, but not both")
	ErrInvalidVoteValue = errors.New("value must be 1 (upvote) or -1 (downvote)")
)

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// VoteTarget names the single entity a vote applies to.
type VoteTarget struct {
	Kind TargetKind
	ID   uint
}

func PostTarget(id uint) VoteTarget    { return VoteTarget{Kind: TargetPost, ID: id} }
func CommentTarget(id uint) VoteTarget { return VoteTarget{Kind: TargetComment, ID: id} }

// NewVoteTarget builds a target from optional post and comment ids. Exactly one must be set.
func NewVoteTarget(postID, commentID *uint) (VoteTarget, error) {
	hasPost := postID != nil && *postID != 0
	hasComment := commentID != nil && *commentID != 0
	switch {
	case hasPost && !hasComment:
		return PostTarget(*postID), nil
	case hasComment && !hasPost:
		return CommentTarget(*commentID), nil
	default:
		return VoteTarget{}, ErrInvalidTarget
	}
}

func (t VoteTarget) Validate() error {
	if t.ID == 0 || (t.Kind != TargetPost && t.Kind != TargetComment) {
		return ErrInvalidTarget
	}
	return nil
}

// Column is the votes column holding this target's id.
func (t VoteTarget) Column() string {
	if t.Kind == TargetComment {
		return "comment_id"
	}
	return "post_id"
}

// NewVote builds an unsaved vote row for target.
func NewVote(userID uint, target VoteTarget, value int) Vote {
	id := target.ID
	v := Vote{UserID: userID, Value: value}
	if target.Kind == TargetComment {
		v.CommentID = &id
	} else {
		v.PostID = &id
	}
	return v
}

func ValidateVoteValue(value int) error {
	if value != Upvote && value != Downvote {
		return ErrInvalidVoteValue
	}
	return nil
}

type VoteAction int

const (
	VoteInsert VoteAction = iota
	VoteDelete
	VoteUpdate
)

// ResolveVote decides what casting value does given the user's existing vote (nil for none),
// and the user's resulting vote: the same value again toggles off to 0.
func ResolveVote(existing *Vote, value int) (VoteAction, int) {
	switch {
	case existing == nil:
		return VoteInsert, value
	case existing.Value == value:
		return VoteDelete, 0
	default:
		return VoteUpdate, value
	}
}

// VoteResult is the target's recomputed score and the caller's resulting vote.
type VoteResult struct {
	VoteScore int64 `json:"voteScore"`
	UserVote  int   `json:"userVote"`
}
