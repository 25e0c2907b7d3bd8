package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrNoFactorFound, "no active emission factor for activity flight_domestic")

	assert.True(t, errors.Is(err, ErrNoFactorFound))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ErrNoFactorFound.Status, err.Status)
	assert.Contains(t, err.Error(), "flight_domestic")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "load production")

	assert.True(t, errors.Is(err, ErrInternal))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "load production")
}

func TestFromError(t *testing.T) {
	typed := Clone(ErrValidation, "bad payload")
	assert.Same(t, typed, FromError(typed))

	wrapped := fmt.Errorf("outer: %w", typed)
	assert.Equal(t, ErrValidation.Code, FromError(wrapped).Code)

	plain := FromError(errors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)

	assert.Nil(t, FromError(nil))
}
