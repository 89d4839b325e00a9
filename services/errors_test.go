package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gunalchandran/grocery-backend/store"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Op: "orders.Place", Kind: ErrNotFound, Message: "Product not found", Err: cause}

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Product not found", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	var svcErr *Error
	assert.True(t, errors.As(wrapped, &svcErr))
	assert.Equal(t, "orders.Place", svcErr.Op)
}

func TestErrorMessageFallbacks(t *testing.T) {
	assert.Equal(t, "op: boom", (&Error{Op: "op", Err: errors.New("boom")}).Error())
	assert.Equal(t, "op: conflict", (&Error{Op: "op", Kind: ErrConflict}).Error())
	assert.Equal(t, "op failed", (&Error{Op: "op"}).Error())
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		kind error
	}{
		{"not found", store.ErrNotFound, ErrNotFound},
		{"invalid id", store.ErrInvalidID, ErrValidation},
		{"duplicate", store.ErrDuplicate, ErrConflict},
		{"stock", fmt.Errorf("reserve: %w", store.ErrInsufficientStock), ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate("op", tt.in, "missing")
			assert.ErrorIs(t, err, tt.kind)
			assert.True(t, IsClientError(err))
		})
	}

	assert.NoError(t, translate("op", nil, ""))

	internal := translate("op", errors.New("socket closed"), "")
	assert.EqualError(t, internal, "op: socket closed")
	assert.False(t, IsClientError(internal))
}
