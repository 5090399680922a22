package models

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// MaxMessageLen is the longest message text accepted, in runes.
const MaxMessageLen = 500

// MaxEmojiLen bounds the emoji field of a reply, in runes.
const MaxEmojiLen = 10

// Message is a post on the board. The six counters mirror the number of
// Reaction rows of each kind and are only changed by the reaction engine.
type Message struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	TextKey       string    `gorm:"type:text;not null;default:''" json:"-"` // FoldText(Text), used by search
	AuthorID      uint      `gorm:"index;not null" json:"author_id"`
	Author        User      `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt     time.Time `gorm:"index" json:"timestamp"`
	LikeCount     int       `gorm:"not null;default:0" json:"like_count"`
	LaughCount    int       `gorm:"not null;default:0" json:"laugh_count"`
	SadCount      int       `gorm:"not null;default:0" json:"sad_count"`
	FireCount     int       `gorm:"not null;default:0" json:"fire_count"`
	ThumbsUpCount int       `gorm:"not null;default:0" json:"thumbs_up_count"`
	AngryCount    int       `gorm:"not null;default:0" json:"angry_count"`
	Replies       []Reply   `gorm:"foreignKey:MessageID" json:"replies,omitempty"`
}

// BeforeCreate fills the search key. Text does not change after create.
func (m *Message) BeforeCreate(*gorm.DB) error {
	m.TextKey = FoldText(m.Text)
	return nil
}

// FoldText returns the case-folded form of s used for case-insensitive search.
func FoldText(s string) string {
	return cases.Fold().String(s)
}

// GetUserID returns the author, making messages subject to ownership checks.
func (m Message) GetUserID() uint { return m.AuthorID }

// Count returns the counter for kind.
func (m Message) Count(kind ReactionKind) int {
	switch kind {
	case ReactionLike:
		return m.LikeCount
	case ReactionLaugh:
		return m.LaughCount
	case ReactionSad:
		return m.SadCount
	case ReactionFire:
		return m.FireCount
	case ReactionThumbsUp:
		return m.ThumbsUpCount
	case ReactionAngry:
		return m.AngryCount
	default:
		panic(fmt.Sprintf("models: unknown reaction kind %q", kind))
	}
}

// TotalReactions sums all six counters.
func (m Message) TotalReactions() int {
	return m.LikeCount + m.LaughCount + m.SadCount + m.FireCount + m.ThumbsUpCount + m.AngryCount
}

// Reply is an answer to a message; both Text and Emoji may be blank.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"index;not null" json:"message_id"`
	Text      string    `gorm:"type:text" json:"text"`
	Emoji     string    `gorm:"size:10" json:"emoji"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt time.Time `json:"timestamp"`
}
