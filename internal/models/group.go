package models

// Group is a named category of posts.
type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200;not null" validate:"required,max=200"`
	Slug        string `json:"slug" gorm:"size:50;uniqueIndex;not null" validate:"required,max=50,slug"`
	Description string `json:"description" gorm:"type:text"`
}

func (g Group) String() string {
	return g.Title
}
