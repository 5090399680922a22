package models

import (
	"strings"
	"time"
)

// User is an account on the board. Username keeps the spelling chosen at
// signup; UsernameKey is its case-folded form and carries the unique index,
// so "Alice" and "alice" cannot both exist.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Username    string    `gorm:"size:150;not null" json:"username"`
	UsernameKey string    `gorm:"size:150;uniqueIndex;not null" json:"-"`
	Password    string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Profile     *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// FoldUsername returns the case-insensitive lookup key for a username.
func FoldUsername(name string) string {
	return FoldText(strings.TrimSpace(name))
}
