package view

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-board/i18n"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_LayoutAndFlash(t *testing.T) {
	ResetForTests()
	SetFlashResolver(func(http.ResponseWriter, *http.Request) (string, string, bool) {
		return "success", "Saved!", true
	})
	t.Cleanup(func() { SetFlashResolver(nil) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/login/", nil)
	err := Render(rec, req, "login.html", map[string]any{"Username": "alice"})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Login</title>")
	assert.Contains(t, body, `value="alice"`)
	assert.Contains(t, body, `flash-success`)
	assert.Contains(t, body, "Saved!")
}

func TestRender_TranslatesFieldErrors(t *testing.T) {
	ResetForTests()
	req := httptest.NewRequest(http.MethodPost, "/add/", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), "fr"))
	rec := httptest.NewRecorder()

	err := RenderStatus(rec, req, http.StatusUnprocessableEntity, "message_form.html", map[string]any{
		"Errors": validation.Violations{"text": "required"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Requis")
	assert.Contains(t, rec.Body.String(), `<html lang="fr">`)
}

func TestRender_MessageList(t *testing.T) {
	ResetForTests()
	msg := models.Message{ID: 3, Text: "hello <b>", AuthorID: 1, Author: models.User{Username: "alice"}, CreatedAt: time.Now(), FireCount: 2}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := Render(rec, req, "messages.html", map[string]any{
		"Page":        &fakePage{Messages: []models.Message{msg}, Number: 1, TotalPages: 1},
		"Kinds":       models.ReactionKinds,
		"Reactions":   map[uint]models.ReactionKind{3: models.ReactionFire},
		"UserID":      uint(1),
		"ReplyTo":     uint(0),
		"ReplyErrors": validation.Violations(nil),
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Contains(t, body, "hello &lt;b&gt;", "message text is escaped")
	assert.Contains(t, body, `/react/3/fire/`)
	assert.Contains(t, body, `action="/3/delete/"`, "author sees delete")
	assert.Equal(t, 1, strings.Count(body, `class="active"`))
}

type fakePage struct {
	Messages   []models.Message
	Number     int
	TotalPages int
	Query      string
}

func (p *fakePage) HasPrev() bool { return p.Number > 1 }
func (p *fakePage) HasNext() bool { return p.Number < p.TotalPages }
func (p *fakePage) Prev() int     { return p.Number - 1 }
func (p *fakePage) Next() int     { return p.Number + 1 }

func TestRender_UnknownTemplate(t *testing.T) {
	err := Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "nope.html", nil)
	assert.Error(t, err)
}

func TestFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(i18n.WithLang(context.Background(), "fr"))
	f := Funcs(req)
	assert.Equal(t, "Requis", f["t"].(func(string) string)("required"))
	assert.Equal(t, "fr", f["lang"].(func() string)())
	d := time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1990-02-03", f["date"].(func(*time.Time) string)(&d))
	assert.Equal(t, "", f["date"].(func(*time.Time) string)(nil))
	m := f["dict"].(func(...any) map[string]any)("A", 1, "B", "x")
	assert.Equal(t, map[string]any{"A": 1, "B": "x"}, m)
}
