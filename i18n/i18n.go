// Package i18n holds the message catalogue for flash notices and form errors.
package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when nothing better is known.
const DefaultLang = "en"

type langKey struct{}

var catalog = map[string]map[string]string{
	"en": {
		"required":           "Required",
		"too_long":           "Too long",
		"too_short":          "Too short",
		"invalid_choice":     "Invalid choice",
		"invalid_url":        "Must be an http(s) URL",
		"invalid_date":       "Use the format YYYY-MM-DD",
		"date_in_future":     "Date cannot be in the future",
		"invalid_username":   "Letters, digits and @/./+/-/_ only",
		"username_taken":     "A user with that username already exists",
		"password_mismatch":  "The two password fields didn't match",
		"password_too_short": "This password is too short. It must contain at least 8 characters",
		"password_numeric":   "This password is entirely numeric",
		"password_similar":   "The password is too similar to the username",
		"invalid_login":      "Invalid username or password.",
		"message_deleted":    "Message deleted successfully.",
		"message_not_owner":  "You can only delete your own messages.",
		"task_created":       "Task created successfully.",
		"task_updated":       "Task updated successfully.",
		"task_deleted":       "Task deleted successfully.",
		"profile_updated":    "Profile updated.",
		"logged_out":         "You have been logged out.",
	},
	"fr": {
		"required":           "Requis",
		"too_long":           "Trop long",
		"too_short":          "Trop court",
		"invalid_choice":     "Choix invalide",
		"invalid_url":        "Doit être une URL http(s)",
		"invalid_date":       "Format attendu : AAAA-MM-JJ",
		"date_in_future":     "La date ne peut pas être dans le futur",
		"invalid_username":   "Lettres, chiffres et @/./+/-/_ uniquement",
		"username_taken":     "Ce nom d'utilisateur existe déjà",
		"password_mismatch":  "Les deux mots de passe ne correspondent pas",
		"password_too_short": "Ce mot de passe est trop court (8 caractères minimum)",
		"password_numeric":   "Ce mot de passe est entièrement numérique",
		"password_similar":   "Le mot de passe est trop proche du nom d'utilisateur",
		"invalid_login":      "Nom d'utilisateur ou mot de passe invalide.",
		"message_deleted":    "Message supprimé.",
		"message_not_owner":  "Vous ne pouvez supprimer que vos propres messages.",
		"task_created":       "Tâche créée.",
		"task_updated":       "Tâche mise à jour.",
		"task_deleted":       "Tâche supprimée.",
		"profile_updated":    "Profil mis à jour.",
		"logged_out":         "Vous êtes déconnecté.",
	},
}

// T translates code into lang, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// DetectLanguage picks the first supported primary tag from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		primary, _, _ := strings.Cut(tag, "-")
		primary = strings.ToLower(primary)
		if Supported(primary) {
			return primary
		}
	}
	return DefaultLang
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
