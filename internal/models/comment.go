package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentView is a comment annotated for display.
type CommentView struct {
	ID          uint      `json:"id"`
	PostID      uint      `json:"post_id"`
	Content     string    `json:"content"`
	ContentHTML string    `gorm:"-" json:"content_html"`
	UserID      uint      `json:"user_id"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	VoteScore   int64     `json:"vote_score"`
	UserVote    int       `gorm:"-" json:"userVote"`
}
