package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-board/auth"
	"github.com/diewo77/go-board/internal/middleware"
	"github.com/diewo77/go-board/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, "login.html", nil)
		return
	}

	username := r.FormValue("username")
	user, err := h.accounts.Login(r.Context(), username, r.FormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		render(w, r, "login.html", map[string]any{"Username": username, "Error": "invalid_login"})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, "signup.html", nil)
		return
	}

	username := r.FormValue("username")
	user, err := h.accounts.Signup(r.Context(), username, r.FormValue("password1"), r.FormValue("password2"))
	if v, ok := services.Violations(err); ok {
		render(w, r, "signup.html", map[string]any{"Username": username, "Errors": v})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	middleware.Flash(w, r, middleware.FlashSuccess, "logged_out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
