package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessagePassesWhitelistedErrors(t *testing.T) {
	assert.Equal(t, "insufficient stock", UserMessage(ErrInsufficientStock))
	assert.Equal(t, "order not found", UserMessage(ErrOrderNotFound))
	assert.Equal(t, "product name already exists", UserMessage(ErrProductNameTaken))

	// Wrapped domain errors surface only the sentinel's message; the wrapping
	// context must never reach the user.
	wrapped := fmt.Errorf("placing order: %w", ErrInsufficientStock)
	assert.Equal(t, "insufficient stock", UserMessage(wrapped))

	doubleWrapped := fmt.Errorf("handler: %w", wrapped)
	assert.Equal(t, "insufficient stock", UserMessage(doubleWrapped))
}

func TestUserMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, GenericErrorMessage, UserMessage(errors.New("pq: connection refused")))
	assert.Equal(t, GenericErrorMessage, UserMessage(errors.New("duplicate key value violates unique constraint")))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrOrderNotFound))
	assert.True(t, IsNotFound(ErrProductNotFound))

	// A tag missing from a product payload is a bad request, not a 404.
	assert.False(t, IsNotFound(ErrTagNotFound))
	assert.False(t, IsNotFound(ErrInsufficientStock))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestIsWhitelisted(t *testing.T) {
	for _, err := range []error{
		ErrOrderUnknownProduct, ErrQuantityTooSmall, ErrTooManyTags,
		ErrImageEncoding, ErrImageTooLarge, ErrImageMimeType, ErrProductLimit,
	} {
		assert.True(t, IsWhitelisted(err), err.Error())
	}
	assert.False(t, IsWhitelisted(errors.New("internal")))
	assert.False(t, IsWhitelisted(nil))
}
