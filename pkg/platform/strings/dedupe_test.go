package strings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pstrings "carebridge/pkg/platform/strings"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("drops empties and duplicates, preserves order", func(t *testing.T) {
		got := pstrings.DedupeAndTrim([]string{"  elderly_care ", "disability_support", "elderly_care", "", "   "})
		assert.Equal(t, []string{"elderly_care", "disability_support"}, got)
	})

	t.Run("case-sensitive", func(t *testing.T) {
		got := pstrings.DedupeAndTrim([]string{"Morning", "morning"})
		assert.Equal(t, []string{"Morning", "morning"}, got)
	})

	t.Run("nil and empty input pass through", func(t *testing.T) {
		assert.Nil(t, pstrings.DedupeAndTrim(nil))
		assert.Empty(t, pstrings.DedupeAndTrim([]string{}))
	})
}

func TestDedupeAndTrimLower(t *testing.T) {
	got := pstrings.DedupeAndTrimLower([]string{"  Elderly_Care ", "weekend", "elderly_care", ""})
	assert.Equal(t, []string{"elderly_care", "weekend"}, got)
}
