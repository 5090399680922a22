package services

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/diewo77/go-board/validation"
)

// Sentinel errors; compare with errors.Is.
var (
	ErrNotFound            = errors.New("not_found")
	ErrNotAuthorized       = errors.New("not_authorized")
	ErrEmptyText           = errors.New("empty_text")
	ErrTextTooLong         = errors.New("text_too_long")
	ErrInvalidReactionKind = errors.New("invalid_reaction_kind")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrUsernameTaken       = errors.New("username_taken")
	ErrPasswordMismatch    = errors.New("password_mismatch")
	ErrWeakPassword        = errors.New("weak_password")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
)

// ValidationError carries per-field violation codes back to a form.
// Err, when set, is the sentinel that best describes the failure.
type ValidationError struct {
	Violations validation.Violations
	Err        error
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.Violations))
	fields := make([]string, len(names))
	for i, f := range names {
		fields[i] = f + "=" + e.Violations[f]
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// invalid wraps v into a ValidationError, or returns nil when v is empty.
func invalid(v validation.Violations, sentinel error) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v, Err: sentinel}
}

// Violations extracts the field violations from err, if any.
func Violations(err error) (validation.Violations, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations, true
	}
	return nil, false
}
