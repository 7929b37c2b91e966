package assignments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newParams(familyID id.FamilyID, caregiverID id.CaregiverID) ports.CommitParams {
	assignmentID := id.NewAssignmentID()
	return ports.CommitParams{
		Assignment: models.Assignment{
			ID:               assignmentID,
			FamilyID:         familyID,
			CaregiverID:      caregiverID,
			MatchScore:       85,
			AssignmentReason: "direct request",
			IsActive:         true,
			CreatedAt:        s.now,
			UpdatedAt:        s.now,
		},
		Intervention: models.Intervention{
			ID:              id.NewInterventionID(),
			FamilyID:        familyID,
			CaregiverID:     caregiverID,
			Type:            models.InterventionManualMatch,
			Reason:          "direct request",
			AdminMatchScore: 85,
			Status:          models.InterventionStatusActive,
			CreatedAt:       s.now,
			UpdatedAt:       s.now,
		},
	}
}

func (s *MemoryStoreSuite) TestCommitWritesBothRecords() {
	familyID := id.NewFamilyID()
	caregiverID := id.NewCaregiverID()

	intervention, assignment, err := s.store.CommitAssignment(s.ctx, s.newParams(familyID, caregiverID))
	s.Require().NoError(err)
	s.Equal(assignment.ID, intervention.AssignmentID)

	stored, err := s.store.GetAssignment(s.ctx, assignment.ID)
	s.Require().NoError(err)
	s.True(stored.IsActive)

	linked, err := s.store.ListInterventionsByAssignment(s.ctx, assignment.ID)
	s.Require().NoError(err)
	s.Len(linked, 1)
	s.Equal(models.InterventionStatusActive, linked[0].Status)
}

func (s *MemoryStoreSuite) TestCommitEnforcesCapacity() {
	caregiverID := id.NewCaregiverID()

	for range 5 {
		_, _, err := s.store.CommitAssignment(s.ctx, s.newParams(id.NewFamilyID(), caregiverID))
		s.Require().NoError(err)
	}

	params := s.newParams(id.NewFamilyID(), caregiverID)
	params.EnforceCapacity = 5
	_, _, err := s.store.CommitAssignment(s.ctx, params)
	s.Require().ErrorIs(err, sentinel.ErrCapacity)

	count, err := s.store.CountActiveAssignments(s.ctx, caregiverID)
	s.Require().NoError(err)
	s.Equal(5, count)

	s.Run("disabled guard admits the sixth", func() {
		params := s.newParams(id.NewFamilyID(), caregiverID)
		params.EnforceCapacity = 0
		_, _, err := s.store.CommitAssignment(s.ctx, params)
		s.Require().NoError(err)
	})
}

func (s *MemoryStoreSuite) TestCommitRejectsNothingOnCapacityFailure() {
	caregiverID := id.NewCaregiverID()
	familyID := id.NewFamilyID()

	_, _, err := s.store.CommitAssignment(s.ctx, s.newParams(id.NewFamilyID(), caregiverID))
	s.Require().NoError(err)

	params := s.newParams(familyID, caregiverID)
	params.EnforceCapacity = 1
	_, _, err = s.store.CommitAssignment(s.ctx, params)
	s.Require().ErrorIs(err, sentinel.ErrCapacity)

	_, err = s.store.GetAssignment(s.ctx, params.Assignment.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.GetIntervention(s.ctx, params.Intervention.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestCommitDeactivatesPrevious() {
	familyID := id.NewFamilyID()

	_, first, err := s.store.CommitAssignment(s.ctx, s.newParams(familyID, id.NewCaregiverID()))
	s.Require().NoError(err)

	params := s.newParams(familyID, id.NewCaregiverID())
	params.DeactivatePrevious = true
	_, second, err := s.store.CommitAssignment(s.ctx, params)
	s.Require().NoError(err)

	previous, err := s.store.GetAssignment(s.ctx, first.ID)
	s.Require().NoError(err)
	s.False(previous.IsActive)

	active, err := s.store.GetActiveAssignment(s.ctx, familyID)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal(second.ID, active.ID)

	inactive, err := s.store.ListInactiveAssignments(s.ctx, familyID)
	s.Require().NoError(err)
	s.Len(inactive, 1)
}

func (s *MemoryStoreSuite) TestDeactivateAssignment() {
	familyID := id.NewFamilyID()
	_, assignment, err := s.store.CommitAssignment(s.ctx, s.newParams(familyID, id.NewCaregiverID()))
	s.Require().NoError(err)

	later := s.now.Add(48 * time.Hour)
	deactivated, err := s.store.DeactivateAssignment(s.ctx, assignment.ID, later)
	s.Require().NoError(err)
	s.False(deactivated.IsActive)
	s.Equal(later, deactivated.UpdatedAt)

	linked, err := s.store.ListInterventionsByAssignment(s.ctx, assignment.ID)
	s.Require().NoError(err)
	s.Require().Len(linked, 1)
	s.Equal(models.InterventionStatusCancelled, linked[0].Status)

	s.Run("second deactivation is invalid state", func() {
		_, err := s.store.DeactivateAssignment(s.ctx, assignment.ID, later)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.DeactivateAssignment(s.ctx, id.NewAssignmentID(), later)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestHasActiveAssignment() {
	familyID := id.NewFamilyID()

	has, err := s.store.HasActiveAssignment(s.ctx, familyID)
	s.Require().NoError(err)
	s.False(has)

	_, _, err = s.store.CommitAssignment(s.ctx, s.newParams(familyID, id.NewCaregiverID()))
	s.Require().NoError(err)

	has, err = s.store.HasActiveAssignment(s.ctx, familyID)
	s.Require().NoError(err)
	s.True(has)
}

func (s *MemoryStoreSuite) TestDuplicateIDsConflict() {
	params := s.newParams(id.NewFamilyID(), id.NewCaregiverID())
	_, _, err := s.store.CommitAssignment(s.ctx, params)
	s.Require().NoError(err)

	_, _, err = s.store.CommitAssignment(s.ctx, params)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}
