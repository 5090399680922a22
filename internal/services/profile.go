package services

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/validation"
	"gorm.io/gorm"
)

// ProfileInput is the profile edit form.
type ProfileInput struct {
	Bio       string
	AvatarURL string
	Website   string
	Location  string
	BirthDate string // YYYY-MM-DD or empty
}

// ProfileSummary is the read-only profile page for one user.
type ProfileSummary struct {
	User           models.User      `json:"user"`
	Profile        *models.Profile  `json:"profile"`
	Messages       []models.Message `json:"messages"`
	MessageCount   int64            `json:"message_count"`
	TotalReactions int64            `json:"total_reactions"`
}

type ProfileService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db, now: time.Now}
}

// rollupQuery counts a user's messages and sums every reaction counter on them.
func rollupQuery(userID uint) (string, []any, error) {
	return sq.Select(
		"COUNT(*) AS message_count",
		"COALESCE(SUM(like_count + laugh_count + sad_count + fire_count + thumbs_up_count + angry_count), 0) AS total_reactions",
	).
		From("messages").
		Where(sq.Eq{"author_id": userID}).
		PlaceholderFormat(sq.Question).
		ToSql()
}

// Summary loads the profile page of username, matched case-insensitively.
func (s *ProfileService) Summary(ctx context.Context, username string) (*ProfileSummary, error) {
	db := s.db.WithContext(ctx)

	var u models.User
	if err := db.Where("username_key = ?", models.FoldUsername(username)).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := &ProfileSummary{User: u}

	p, err := s.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	out.Profile = p

	if err := db.Where("author_id = ?", u.ID).Order("created_at DESC, id DESC").Find(&out.Messages).Error; err != nil {
		return nil, err
	}
	for i := range out.Messages {
		out.Messages[i].Author = u
	}

	query, args, err := rollupQuery(u.ID)
	if err != nil {
		return nil, err
	}
	var rollup struct {
		MessageCount   int64
		TotalReactions int64
	}
	if err := db.Raw(query, args...).Scan(&rollup).Error; err != nil {
		return nil, err
	}
	out.MessageCount = rollup.MessageCount
	out.TotalReactions = rollup.TotalReactions
	return out, nil
}

// Get returns userID's profile, or nil when none has been saved yet.
func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update validates in and saves it as userID's profile, creating the row on
// first use.
func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (*models.Profile, error) {
	in.Bio = strings.TrimSpace(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	in.Website = strings.TrimSpace(in.Website)
	in.Location = strings.TrimSpace(in.Location)
	in.BirthDate = strings.TrimSpace(in.BirthDate)

	v := make(validation.Violations)
	validation.MaxLen("bio", in.Bio, 500, v)
	validation.HTTPURL("avatar_url", in.AvatarURL, v)
	validation.MaxLen("avatar_url", in.AvatarURL, 200, v)
	validation.HTTPURL("website", in.Website, v)
	validation.MaxLen("website", in.Website, 200, v)
	validation.MaxLen("location", in.Location, 100, v)
	birth := validation.PastDate("birth_date", in.BirthDate, s.now(), v)
	if err := invalid(v, nil); err != nil {
		return nil, err
	}

	var p models.Profile
	if err := s.db.WithContext(ctx).Where(models.Profile{UserID: userID}).FirstOrInit(&p).Error; err != nil {
		return nil, err
	}
	p.Bio = in.Bio
	p.AvatarURL = in.AvatarURL
	p.Website = in.Website
	p.Location = in.Location
	p.BirthDate = birth
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
