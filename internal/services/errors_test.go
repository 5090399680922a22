package services

import (
	"errors"
	"testing"

	"github.com/diewo77/go-board/validation"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_MessageIsSortedByField(t *testing.T) {
	err := invalid(validation.Violations{
		"website":    "invalid_url",
		"bio":        "too_long",
		"birth_date": "date_in_future",
		"avatar_url": "invalid_url",
	}, nil)

	for i := 0; i < 20; i++ {
		assert.Equal(t,
			"validation failed: avatar_url=invalid_url, bio=too_long, birth_date=date_in_future, website=invalid_url",
			err.Error())
	}
}

func TestValidationError_UnwrapsSentinel(t *testing.T) {
	err := invalid(validation.Violations{"text": "required"}, ErrEmptyText)
	assert.True(t, errors.Is(err, ErrEmptyText))

	v, ok := Violations(err)
	assert.True(t, ok)
	assert.Equal(t, "required", v["text"])
	assert.Nil(t, invalid(validation.Violations{}, ErrEmptyText))
}
