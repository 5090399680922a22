package models

import "time"

// Profile holds optional public details for a user. It is created on the
// first edit, never at signup.
type Profile struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio       string     `gorm:"size:500" json:"bio"`
	AvatarURL string     `gorm:"size:200" json:"avatar_url"`
	Website   string     `gorm:"size:200" json:"website"`
	Location  string     `gorm:"size:100" json:"location"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}
