package handlers

import (
	"net/http"
	"net/url"

	"github.com/diewo77/go-board/auth"
	"github.com/diewo77/go-board/httpx"
	"github.com/diewo77/go-board/internal/middleware"
	"github.com/diewo77/go-board/internal/services"
	"github.com/diewo77/go-board/validation"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	accounts *services.AccountService
}

func NewProfileHandler(profiles *services.ProfileService, accounts *services.AccountService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, accounts: accounts}
}

// Own redirects to the signed-in user's profile page.
func (h *ProfileHandler) Own(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	u, err := h.accounts.UserByID(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile/"+url.PathEscape(u.Username)+"/", http.StatusSeeOther)
}

func (h *ProfileHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	sum, err := h.profiles.Summary(r.Context(), r.PathValue("username"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, sum)
		return
	}
	render(w, r, "profile.html", map[string]any{
		"Summary": sum,
		"IsOwner": sum.User.ID == userID,
	})
}

func (h *ProfileHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if r.Method == http.MethodGet {
		p, err := h.profiles.Get(r.Context(), userID)
		if err != nil {
			serverError(w, r, err)
			return
		}
		var form services.ProfileInput
		if p != nil {
			form = services.ProfileInput{Bio: p.Bio, AvatarURL: p.AvatarURL, Website: p.Website, Location: p.Location}
			if p.BirthDate != nil {
				form.BirthDate = p.BirthDate.Format("2006-01-02")
			}
		}
		render(w, r, "profile_edit.html", map[string]any{"Form": form, "Errors": validation.Violations(nil)})
		return
	}

	form := services.ProfileInput{
		Bio:       r.FormValue("bio"),
		AvatarURL: r.FormValue("avatar_url"),
		Website:   r.FormValue("website"),
		Location:  r.FormValue("location"),
		BirthDate: r.FormValue("birth_date"),
	}
	_, err := h.profiles.Update(r.Context(), userID, form)
	if v, ok := services.Violations(err); ok {
		render(w, r, "profile_edit.html", map[string]any{"Form": form, "Errors": v})
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}
	middleware.Flash(w, r, middleware.FlashSuccess, "profile_updated")
	http.Redirect(w, r, "/profile/", http.StatusSeeOther)
}
