package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/diewo77/go-board/gate"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/internal/policy"
	"github.com/diewo77/go-board/validation"
	"gorm.io/gorm"
)

// PageSize is the number of messages per list page.
const PageSize = 10

// Authorizer decides whether a user may act on a resource.
type Authorizer interface {
	Authorize(ctx context.Context, user uint, action gate.Action, resourceType string, resource any) error
}

// Page is one page of the message list.
type Page struct {
	Messages   []models.Message `json:"messages"`
	Number     int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int64            `json:"total"`
	Query      string           `json:"query,omitempty"`
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.TotalPages }
func (p *Page) Prev() int     { return p.Number - 1 }
func (p *Page) Next() int     { return p.Number + 1 }

// MessageService creates, lists and deletes messages and their replies.
type MessageService struct {
	db   *gorm.DB
	auth Authorizer
}

func NewMessageService(db *gorm.DB, auth Authorizer) *MessageService {
	return &MessageService{db: db, auth: auth}
}

// authorize checks action on a message resource (nil for create) and maps
// a gate denial to ErrNotAuthorized.
func (s *MessageService) authorize(ctx context.Context, userID uint, action gate.Action, m *models.Message) error {
	var resource any
	if m != nil {
		resource = m
	}
	return authorizeMessage(ctx, s.auth, userID, action, resource)
}

func authorizeMessage(ctx context.Context, auth Authorizer, userID uint, action gate.Action, resource any) error {
	err := auth.Authorize(ctx, userID, action, policy.ResourceMessage, resource)
	if errors.Is(err, gate.ErrUnauthorized) {
		return ErrNotAuthorized
	}
	return err
}

// CreateMessage posts text as authorID. Text is trimmed before it is checked.
func (s *MessageService) CreateMessage(ctx context.Context, authorID uint, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	v := make(validation.Violations)
	switch n := utf8.RuneCountInString(text); {
	case n == 0:
		v.Add("text", "required")
		return nil, invalid(v, ErrEmptyText)
	case n > models.MaxMessageLen:
		v.Add("text", "too_long")
		return nil, invalid(v, ErrTextTooLong)
	}
	if err := s.authorize(ctx, authorID, gate.ActionCreate, nil); err != nil {
		return nil, err
	}
	m := &models.Message{Text: text, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var m models.Message
	if err := s.db.WithContext(ctx).Preload("Author").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListMessages returns page of the messages, newest first. A non-empty query
// keeps messages whose text or author username contains it, ignoring case
// (full Unicode case folding).
// Out of range pages are clamped to the first or last page.
func (s *MessageService) ListMessages(ctx context.Context, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	filtered := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Message{})
		if query != "" {
			// Both sides are folded in Go; SQL LOWER() only folds ASCII on SQLite.
			pattern := "%" + likeEscaper.Replace(models.FoldText(query)) + "%"
			q = q.Joins("JOIN users ON users.id = messages.author_id").
				Where(`messages.text_key LIKE ? ESCAPE '\' OR users.username_key LIKE ? ESCAPE '\'`, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}
	pages := int((total + PageSize - 1) / PageSize)
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	var msgs []models.Message
	err := filtered().
		Select("messages.*").
		Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Replies.Author").
		Order("messages.created_at DESC, messages.id DESC").
		Limit(PageSize).
		Offset((page - 1) * PageSize).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return &Page{Messages: msgs, Number: page, TotalPages: pages, Total: total, Query: query}, nil
}

// DeleteMessage removes messageID with its reactions and replies. Only the
// author may delete; anyone else gets ErrNotAuthorized and nothing changes.
func (s *MessageService) DeleteMessage(ctx context.Context, requesterID, messageID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Message
		if err := tx.First(&m, messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := s.authorize(ctx, requesterID, gate.ActionDelete, &m); err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", m.ID).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", m.ID).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}

// CreateReply answers messageID. Text and emoji may both be blank.
func (s *MessageService) CreateReply(ctx context.Context, messageID, authorID uint, text, emoji string) (*models.Reply, error) {
	emoji = strings.TrimSpace(emoji)
	v := make(validation.Violations)
	validation.MaxLen("emoji", emoji, models.MaxEmojiLen, v)
	if err := invalid(v, nil); err != nil {
		return nil, err
	}
	m, err := s.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, authorID, gate.ActionReply, m); err != nil {
		return nil, err
	}
	r := &models.Reply{MessageID: messageID, AuthorID: authorID, Text: strings.TrimSpace(text), Emoji: emoji}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// UserReactions maps each of messageIDs that userID reacted to onto the kind.
func (s *MessageService) UserReactions(ctx context.Context, userID uint, messageIDs []uint) (map[uint]models.ReactionKind, error) {
	out := make(map[uint]models.ReactionKind, len(messageIDs))
	if len(messageIDs) == 0 {
		return out, nil
	}
	var rows []models.Reaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.MessageID] = r.Type
	}
	return out, nil
}
