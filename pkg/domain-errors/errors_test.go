package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("wrapped error keeps cause in chain", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "failed to commit assignment")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "failed to commit assignment")
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "family not found")))
	})

	t.Run("coded error below fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeMatchRejected, "match rejected"))
		assert.Equal(t, CodeMatchRejected, CodeOf(err))
	})

	t.Run("uncoded error defaults to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("nil error has no code", func(t *testing.T) {
		assert.Equal(t, Code(""), CodeOf(nil))
	})
}

func TestHasCode(t *testing.T) {
	err := Wrap(errors.New("row lock timeout"), CodeCapacityExceeded, "caregiver at capacity")
	assert.True(t, HasCode(err, CodeCapacityExceeded))
	assert.False(t, HasCode(err, CodeNotFound))
}
