package models

import "strings"

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string `json:"email" gorm:"type:varchar(254);not null;default:''"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
	FirstName    string `json:"firstName" gorm:"type:varchar(150);not null;default:''"`
	LastName     string `json:"lastName" gorm:"type:varchar(150);not null;default:''"`
	Posts        []Post `json:"-" gorm:"foreignKey:AuthorID"`
}

// DisplayName falls back to the username when no full name was given.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}
