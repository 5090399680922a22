package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-board/auth"
	"github.com/diewo77/go-board/httpx"
	"github.com/diewo77/go-board/internal/middleware"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/internal/services"
	"github.com/diewo77/go-board/validation"
)

type MessageHandler struct {
	messages  *services.MessageService
	reactions *services.ReactionEngine
}

func NewMessageHandler(messages *services.MessageService, reactions *services.ReactionEngine) *MessageHandler {
	return &MessageHandler{messages: messages, reactions: reactions}
}

// List serves the board, optionally filtered by ?q= and paged by ?page=.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, 0, nil)
}

// renderList renders the board; replyTo/replyErrs re-show a failed reply form.
func (h *MessageHandler) renderList(w http.ResponseWriter, r *http.Request, replyTo uint, replyErrs validation.Violations) {
	userID, _ := auth.UserIDFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	p, err := h.messages.ListMessages(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		serverError(w, r, err)
		return
	}
	ids := make([]uint, len(p.Messages))
	for i, m := range p.Messages {
		ids[i] = m.ID
	}
	mine, err := h.messages.UserReactions(r.Context(), userID, ids)
	if err != nil {
		serverError(w, r, err)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"page": p, "reactions": mine})
		return
	}
	render(w, r, "messages.html", map[string]any{
		"Page":        p,
		"Kinds":       models.ReactionKinds,
		"Reactions":   mine,
		"UserID":      userID,
		"ReplyTo":     replyTo,
		"ReplyErrors": replyErrs,
	})
}

func (h *MessageHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, r, "message_form.html", nil)
}

type messageInput struct {
	Text string `json:"text"`
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var in messageInput
	if httpx.SentJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		in.Text = r.FormValue("text")
	}

	m, err := h.messages.CreateMessage(r.Context(), userID, in.Text)
	if v, ok := services.Violations(err); ok {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		render(w, r, "message_form.html", map[string]any{"Text": in.Text, "Errors": v})
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, m)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Reply answers a message. A rejected reply re-renders the board with the
// error next to that message's form.
func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	_, err := h.messages.CreateReply(r.Context(), id, userID, r.FormValue("text"), r.FormValue("emoji"))
	if v, ok := services.Violations(err); ok {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		h.renderList(w, r, id, v)
		return
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r)
		return
	}

	err := h.messages.DeleteMessage(r.Context(), userID, id)
	switch {
	case errors.Is(err, services.ErrNotAuthorized):
		middleware.Flash(w, r, middleware.FlashError, "message_not_owner")
	case err != nil:
		fail(w, r, err)
		return
	default:
		middleware.Flash(w, r, middleware.FlashSuccess, "message_deleted")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// React applies the reaction in the path and answers {"count": n}.
func (h *MessageHandler) React(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	n, err := h.reactions.ApplyReaction(r.Context(), userID, id, models.ReactionKind(r.PathValue("type")))
	switch {
	case errors.Is(err, services.ErrInvalidReactionKind):
		httpx.JSONError(w, http.StatusBadRequest, "invalid reaction type", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrNotAuthorized):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case err != nil:
		serverError(w, r, err)
	default:
		httpx.JSON(w, http.StatusOK, map[string]int{"count": n})
	}
}
