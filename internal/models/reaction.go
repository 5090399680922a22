package models

import (
	"fmt"
	"time"
)

// ReactionKind is one of the six reactions a user can leave on a message.
type ReactionKind string

const (
	ReactionLike     ReactionKind = "like"
	ReactionLaugh    ReactionKind = "laugh"
	ReactionSad      ReactionKind = "sad"
	ReactionFire     ReactionKind = "fire"
	ReactionThumbsUp ReactionKind = "thumbs_up"
	ReactionAngry    ReactionKind = "angry"
)

// ReactionKinds lists every kind in display order.
var ReactionKinds = []ReactionKind{
	ReactionLike, ReactionLaugh, ReactionSad, ReactionFire, ReactionThumbsUp, ReactionAngry,
}

// Valid reports whether k is one of the six kinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLaugh, ReactionSad, ReactionFire, ReactionThumbsUp, ReactionAngry:
		return true
	}
	return false
}

// Column returns the messages column holding the counter for k.
func (k ReactionKind) Column() string {
	switch k {
	case ReactionLike:
		return "like_count"
	case ReactionLaugh:
		return "laugh_count"
	case ReactionSad:
		return "sad_count"
	case ReactionFire:
		return "fire_count"
	case ReactionThumbsUp:
		return "thumbs_up_count"
	case ReactionAngry:
		return "angry_count"
	default:
		panic(fmt.Sprintf("models: unknown reaction kind %q", k))
	}
}

// Emoji is the glyph shown on the reaction button.
func (k ReactionKind) Emoji() string {
	switch k {
	case ReactionLike:
		return "❤️"
	case ReactionLaugh:
		return "😂"
	case ReactionSad:
		return "😢"
	case ReactionFire:
		return "🔥"
	case ReactionThumbsUp:
		return "👍"
	case ReactionAngry:
		return "😠"
	}
	return ""
}

// Reaction records the single reaction a user currently has on a message.
type Reaction struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_reaction_user_message" json:"user_id"`
	MessageID uint         `gorm:"not null;uniqueIndex:idx_reaction_user_message;index" json:"message_id"`
	Type      ReactionKind `gorm:"column:reaction_type;size:10;not null" json:"reaction_type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
