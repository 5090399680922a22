package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxUsernameLen = 150
	minPasswordLen = 8
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// dummyHash is compared against when the username is unknown so that both
// login failures cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("board-login-placeholder"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// AccountService handles signup and credential checks.
type AccountService struct {
	db   *gorm.DB
	cost int
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, cost: bcrypt.DefaultCost}
}

// Signup creates a user. The returned error is a *ValidationError wrapping
// ErrUsernameTaken, ErrPasswordMismatch or ErrWeakPassword when the input is
// rejected.
func (s *AccountService) Signup(ctx context.Context, username, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)
	key := models.FoldUsername(username)

	v := make(validation.Violations)
	var sentinel error
	fail := func(field, code string, err error) {
		v.Add(field, code)
		if sentinel == nil {
			sentinel = err
		}
	}

	validation.Required("username", username, v)
	validation.MaxLen("username", username, maxUsernameLen, v)
	if !v.Has("username") && !usernamePattern.MatchString(username) {
		v.Add("username", "invalid_username")
	}
	if !v.Has("username") {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username_key = ?", key).Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			fail("username", "username_taken", ErrUsernameTaken)
		}
	}

	validation.Required("password1", password, v)
	validation.Required("password2", confirm, v)
	if !v.Has("password1") && !v.Has("password2") {
		if password != confirm {
			fail("password2", "password_mismatch", ErrPasswordMismatch)
		} else if code := passwordWeakness(username, password); code != "" {
			fail("password2", code, ErrWeakPassword)
		}
	}
	if err := invalid(v, sentinel); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: username, UsernameKey: key, Password: string(hash)}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid(validation.Violations{"username": "username_taken"}, ErrUsernameTaken)
		}
		return nil, err
	}
	return u, nil
}

// passwordWeakness returns the i18n code of the first rule password breaks,
// or "" when it is acceptable.
func passwordWeakness(username, password string) string {
	switch {
	case len([]rune(password)) < minPasswordLen:
		return "password_too_short"
	case strings.Trim(password, "0123456789") == "":
		return "password_numeric"
	case models.FoldUsername(password) == models.FoldUsername(username):
		return "password_similar"
	}
	return ""
}

// Login checks credentials. Unknown users and wrong passwords both yield
// ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username_key = ?", models.FoldUsername(username)).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *AccountService) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user with id is still present; it backs the
// session verifier.
func (s *AccountService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}
