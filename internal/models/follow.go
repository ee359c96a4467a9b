package models

import "time"

// Follow is a directed edge: UserID wants to see AuthorID's posts in their feed.
// The pair is unique and a user cannot follow themself.
type Follow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_unique_follower"`
	User      User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index;uniqueIndex:idx_unique_follower;check:chk_no_self_follow,user_id <> author_id"`
	Author    User      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"created_at"`
}
