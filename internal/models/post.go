package models

import "github.com/google/uuid"

// Post is ordered newest first everywhere it is listed. AuthorID is fixed at
// creation; only Text and GroupID change afterwards.
type Post struct {
	BaseModel
	Text     string     `json:"text" gorm:"type:text;not null"`
	AuthorID uuid.UUID  `json:"authorID" gorm:"type:uuid;not null;index"`
	GroupID  *uuid.UUID `json:"groupID,omitempty" gorm:"type:uuid;index"`

	Author User   `json:"author" gorm:"foreignKey:AuthorID;references:ID"`
	Group  *Group `json:"group,omitempty" gorm:"foreignKey:GroupID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p != nil && userID != uuid.Nil && p.AuthorID == userID
}
