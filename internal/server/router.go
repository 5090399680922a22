// Package server assembles the board's routes and middleware.
package server

import (
	"net/http"
	"time"

	"github.com/diewo77/go-board/auth"
	"github.com/diewo77/go-board/httpx"
	"github.com/diewo77/go-board/internal/config"
	"github.com/diewo77/go-board/internal/db"
	"github.com/diewo77/go-board/internal/handlers"
	"github.com/diewo77/go-board/internal/metrics"
	"github.com/diewo77/go-board/internal/middleware"
	"github.com/diewo77/go-board/internal/policy"
	"github.com/diewo77/go-board/internal/services"
	"github.com/diewo77/go-board/view"
	"gorm.io/gorm"
)

const verifierTTL = 30 * time.Second

// New constructs the root http.Handler with all routes and middlewares applied.
func New(gdb *gorm.DB, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	accounts := services.NewAccountService(gdb)
	auth.SetSecret(cfg.Session.Secret)
	// Sessions of deleted users are dropped.
	auth.SetUserVerifier(auth.NewVerifierCache(accounts.Exists, verifierTTL).Verify)
	view.SetFlashResolver(middleware.PopFlash)

	// --- Health & metrics ---
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(gdb); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// --- Auth ---
	ah := handlers.NewAuthHandler(accounts)
	mux.HandleFunc("/signup/{$}", ah.Signup)
	mux.HandleFunc("/login/{$}", ah.Login)
	mux.HandleFunc("/logout/{$}", ah.Logout)

	protect := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }

	// --- Messages ---
	g := policy.NewGate()
	mh := handlers.NewMessageHandler(
		services.NewMessageService(gdb, g),
		services.NewReactionEngine(gdb, g),
	)
	limit := middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	mux.Handle("GET /{$}", protect(mh.List))
	mux.Handle("GET /add/{$}", protect(mh.New))
	mux.Handle("POST /add/{$}", protect(mh.Create))
	mux.Handle("POST /{id}/reply/{$}", protect(mh.Reply))
	mux.Handle("POST /{id}/delete/{$}", protect(mh.Delete))
	mux.Handle("POST /react/{id}/{type}/{$}", auth.RequireAuth(limit(http.HandlerFunc(mh.React))))

	// --- Profiles ---
	ph := handlers.NewProfileHandler(services.NewProfileService(gdb), accounts)
	mux.Handle("GET /profile/{$}", protect(ph.Own))
	mux.Handle("GET /profile/edit/{$}", protect(ph.Edit))
	mux.Handle("POST /profile/edit/{$}", protect(ph.Edit))
	mux.Handle("GET /profile/{username}/{$}", protect(ph.View))

	// --- Tasks ---
	th := handlers.NewTaskHandler(services.NewTaskService(gdb))
	mux.Handle("GET /tasks/{$}", protect(th.List))
	mux.Handle("/tasks/add/{$}", protect(th.Add))
	mux.Handle("/tasks/{id}/edit/{$}", protect(th.Edit))
	mux.Handle("POST /tasks/{id}/delete/{$}", protect(th.Delete))
	mux.Handle("POST /tasks/{id}/update-status/{$}", protect(th.UpdateStatus))

	// Logging wraps the mux directly so it sees the matched pattern.
	var h http.Handler = middleware.Logging(mux)
	h = auth.Middleware(h)
	h = middleware.Prefs(h)
	h = middleware.RequestID(h)
	return middleware.Recover(h)
}
