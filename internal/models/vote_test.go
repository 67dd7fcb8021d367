package models

import (
	"errors"
	"testing"
)

func uintPtr(v uint) *uint { return &v }

func TestResolveVote(t *testing.T) {
	tests := []struct {
		name       string
		existing   *Vote
		value      int
		wantAction VoteAction
		wantVote   int
	}{
		{"no vote, upvote", nil, Upvote, VoteInsert, 1},
		{"no vote, downvote", nil, Downvote, VoteInsert, -1},
		{"same upvote toggles off", &Vote{Value: Upvote}, Upvote, VoteDelete, 0},
		{"same downvote toggles off", &Vote{Value: Downvote}, Downvote, VoteDelete, 0},
		{"up to down flips", &Vote{Value: Upvote}, Downvote, VoteUpdate, -1},
		{"down to up flips", &Vote{Value: Downvote}, Upvote, VoteUpdate, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, vote := ResolveVote(tt.existing, tt.value)
			if action != tt.wantAction {
				t.Errorf("action = %d, want %d", action, tt.wantAction)
			}
			if vote != tt.wantVote {
				t.Errorf("user vote = %d, want %d", vote, tt.wantVote)
			}
		})
	}
}

func TestNewVoteTarget(t *testing.T) {
	tests := []struct {
		name      string
		postID    *uint
		commentID *uint
		want      VoteTarget
		wantErr   bool
	}{
		{"post only", uintPtr(10), nil, PostTarget(10), false},
		{"comment only", nil, uintPtr(20), CommentTarget(20), false},
		{"both", uintPtr(10), uintPtr(20), VoteTarget{}, true},
		{"neither", nil, nil, VoteTarget{}, true},
		{"zero ids count as absent", uintPtr(0), uintPtr(0), VoteTarget{}, true},
		{"zero post with comment", uintPtr(0), uintPtr(5), CommentTarget(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewVoteTarget(tt.postID, tt.commentID)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTarget) {
					t.Fatalf("expected ErrInvalidTarget, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("target = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateVoteValue(t *testing.T) {
	for _, v := range []int{1, -1} {
		if err := ValidateVoteValue(v); err != nil {
			t.Errorf("value %d rejected: %v", v, err)
		}
	}
	for _, v := range []int{0, 2, -2, 100} {
		if !errors.Is(ValidateVoteValue(v), ErrInvalidVoteValue) {
			t.Errorf("value %d accepted", v)
		}
	}
}

func TestNewVoteSetsExactlyOneTarget(t *testing.T) {
	pv := NewVote(1, PostTarget(10), Upvote)
	if pv.PostID == nil || *pv.PostID != 10 || pv.CommentID != nil {
		t.Errorf("post vote targets wrong column: %+v", pv)
	}
	cv := NewVote(1, CommentTarget(20), Downvote)
	if cv.CommentID == nil || *cv.CommentID != 20 || cv.PostID != nil {
		t.Errorf("comment vote targets wrong column: %+v", cv)
	}
	if PostTarget(1).Column() != "post_id" || CommentTarget(1).Column() != "comment_id" {
		t.Error("unexpected target columns")
	}
	if (VoteTarget{Kind: "poll", ID: 1}).Validate() == nil {
		t.Error("unknown kind should be invalid")
	}
}
