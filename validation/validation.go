package validation

import (
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Violations maps a form field to a message code understood by i18n.T.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Has reports whether field already failed.
func (v Violations) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Add records a violation unless the field already has one; the first failure wins.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, maxLen int, v Violations) {
	if utf8.RuneCountInString(value) > maxLen {
		v.Add(field, "too_long")
	}
}

func MinLen(field, value string, minLen int, v Violations) {
	if utf8.RuneCountInString(value) < minLen {
		v.Add(field, "too_short")
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	if !slices.Contains(allowed, value) {
		v.Add(field, "invalid_choice")
	}
}

// HTTPURL accepts empty values; anything else must be an absolute http(s) URL.
func HTTPURL(field, value string, v Violations) {
	if value == "" {
		return
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.Add(field, "invalid_url")
	}
}

// PastDate parses a YYYY-MM-DD value that must not lie after now. Empty input yields nil.
func PastDate(field, value string, now time.Time, v Violations) *time.Time {
	if value == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		v.Add(field, "invalid_date")
		return nil
	}
	if d.After(now) {
		v.Add(field, "date_in_future")
		return nil
	}
	return &d
}
