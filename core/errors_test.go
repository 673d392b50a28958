package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("save profile: %w", ErrStoreIO.Wrap(cause, "write %s", "tony"))

	assert.True(t, IsStoreIO(err))
	assert.True(t, errors.Is(err, ErrStoreIO))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsMalformedProfile(err))
	assert.Contains(t, err.Error(), "store: io failure: write tony: permission denied")

	de := GetDomainError(err)
	if assert.NotNil(t, de) {
		assert.Equal(t, ModuleStore, de.Module)
		assert.Equal(t, ErrorCodeIOFailure, de.Code)
	}
}

func TestNotFoundVariants(t *testing.T) {
	assert.True(t, IsRecipeNotFound(ErrRecipeNotFound.Wrap(nil, "42")))
	assert.False(t, IsStoreNotFound(ErrRecipeNotFound))
	assert.True(t, IsStoreNotFound(ErrStoreNotFound))
	assert.False(t, IsRecipeNotFound(ErrStoreNotFound))
}

func TestIsInvalidInput(t *testing.T) {
	_, err := ParseMealType("brunch")
	assert.True(t, IsInvalidInput(err))
	assert.NotNil(t, GetDomainError(err))
	assert.False(t, IsInvalidInput(errors.New("plain")))
	assert.Nil(t, GetDomainError(nil))
}
