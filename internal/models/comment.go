package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	PostID   uint      `json:"post_id" gorm:"not null;index"`
	Post     *Post     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"author" gorm:"constraint:OnDelete:CASCADE;"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Created  time.Time `json:"created" gorm:"autoCreateTime"`
}

// CommentForm is bound from the comment box on the post page.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}
