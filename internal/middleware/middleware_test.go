package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-board/auth"
	"github.com/diewo77/go-board/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefs_LanguageResolution(t *testing.T) {
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = LangFrom(r) }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "fr", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "fr", got)

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "fr"})
	h.ServeHTTP(rec, req)
	assert.Equal(t, "en", got, "query wins over cookie")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "lang=en")

	req = httptest.NewRequest(http.MethodGet, "/?lang=xx", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "en", got)
}

func TestFlash_RoundTrip(t *testing.T) {
	set := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	Flash(set, req, FlashError, "message_not_owner")
	cookies := set.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	kind, msg, ok := PopFlash(rec, next)
	require.True(t, ok)
	assert.Equal(t, FlashError, kind)
	assert.Equal(t, "You can only delete your own messages.", msg)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0", "flash is shown once")

	_, _, ok = PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = RequestIDFrom(r.Context()) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", seen)
}

func TestLogging_RecordsRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /things/{id}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	counter := metrics.HTTPRequests.WithLabelValues("GET", "GET /things/{id}/", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	Logging(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/7/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, rec.Body.String())
}

func TestRateLimit_PerUser(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(0.001, 2)(ok)

	do := func(uid uint) int {
		req := httptest.NewRequest(http.MethodPost, "/react/1/like/", nil)
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do(1))
	assert.Equal(t, http.StatusOK, do(1))
	assert.Equal(t, http.StatusTooManyRequests, do(1))
	assert.Equal(t, http.StatusOK, do(2), "limits are per user")
}

func TestRateLimit_Disabled(t *testing.T) {
	calls := 0
	h := RateLimit(0, 0)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
	for i := 0; i < 50; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Equal(t, 50, calls)
}

func TestLimiterPool_EvictsIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := newLimiterPool(0.001, 1)
	p.now = func() time.Time { return now }

	assert.True(t, p.Allow("user:1"))
	assert.True(t, p.Allow("user:2"))

	now = now.Add(5 * time.Minute)
	assert.False(t, p.Allow("user:1"), "active key keeps its limiter")
	assert.Equal(t, 2, p.size())

	now = now.Add(6 * time.Minute)
	p.Allow("user:3")
	assert.Equal(t, 2, p.size(), "user:2 idle past the ttl is dropped")

	assert.True(t, p.Allow("user:2"), "an evicted key starts with a fresh bucket")
}
