package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFamilyID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseFamilyID("")
		require.Error(t, err)
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseFamilyID("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("round-trips canonical form", func(t *testing.T) {
		original := NewFamilyID()
		parsed, err := ParseFamilyID(original.String())
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})

	t.Run("accepts nil uuid", func(t *testing.T) {
		parsed, err := ParseFamilyID(uuid.Nil.String())
		require.NoError(t, err)
		assert.True(t, parsed.IsNil())
	})
}

func TestIsNil(t *testing.T) {
	assert.True(t, FamilyID{}.IsNil())
	assert.True(t, CaregiverID{}.IsNil())
	assert.True(t, AssignmentID{}.IsNil())
	assert.True(t, OperatorID{}.IsNil())
	assert.True(t, BatchID{}.IsNil())

	assert.False(t, NewFamilyID().IsNil())
	assert.False(t, NewCaregiverID().IsNil())
	assert.False(t, NewAssignmentID().IsNil())
	assert.False(t, NewBatchID().IsNil())
}

func TestTypedIDsAreDistinct(t *testing.T) {
	// Same underlying uuid, different types: String() matches but the
	// compiler keeps them apart.
	u := uuid.New()
	family := FamilyID(u)
	caregiver := CaregiverID(u)
	assert.Equal(t, family.String(), caregiver.String())
}
