package models

import (
	"time"
)

// Post is a single authored text entry. Posts are listed newest first.
type Post struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	AuthorID uint      `json:"author_id" gorm:"not null;index"`
	Author   User      `json:"author" gorm:"constraint:OnDelete:CASCADE;"`
	GroupID  *uint     `json:"group_id,omitempty" gorm:"index"`
	Group    *Group    `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL;"`
	Image    string    `json:"image,omitempty"` // path relative to the media root, e.g. posts/cat.gif
}

func (p Post) String() string {
	return p.Text
}

// PostForm is bound from the create and edit pages. Group holds the raw
// select value so an empty choice is distinguishable from an invalid one.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,numeric"`
}
