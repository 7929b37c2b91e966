package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carebridge/internal/matching/models"
	"carebridge/internal/matching/progress"
	"carebridge/internal/matching/store/assignments"
	"carebridge/internal/matching/store/profiles"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	service     *Service
	profiles    *profiles.InMemoryStore
	assignments *assignments.InMemoryStore
	progress    *progress.MemorySink
	ctx         context.Context
	now         time.Time
	operator    id.OperatorID
	seeded      int
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.assignments = assignments.NewInMemory()
	s.profiles = profiles.NewInMemory(s.assignments)
	s.progress = progress.NewMemory()

	svc, err := New(nil, s.profiles, s.profiles, s.assignments, s.progress)
	s.Require().NoError(err)
	s.service = svc

	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	operatorID, err := id.ParseOperatorID("0b0b38c4-2c34-4233-9b3f-0f6b6f9444d1")
	s.Require().NoError(err)
	s.operator = operatorID

	ctx := requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithOperatorID(ctx, s.operator)
}

func (s *ServiceSuite) seedFamily(name string, registeredAgo time.Duration) *models.FamilyProfile {
	family := &models.FamilyProfile{
		ID:        id.NewFamilyID(),
		Name:      name,
		CareTypes: id.Tags{"elderly_care"},
		Address:   "12 Elm Street",
		CreatedAt: s.now.Add(-registeredAgo),
	}
	s.profiles.PutFamily(family)
	return family
}

func (s *ServiceSuite) seedCaregiver(name string) *models.CaregiverProfile {
	// Distinct registration times keep pool ordering deterministic.
	s.seeded++
	caregiver := &models.CaregiverProfile{
		ID:                   id.NewCaregiverID(),
		Name:                 name,
		CareTypes:            id.Tags{"elderly_care"},
		AvailabilitySchedule: id.Tags{"flexible"},
		AvailableForMatching: true,
		Address:              "48 Oak Avenue",
		CreatedAt:            s.now.Add(time.Duration(s.seeded) * time.Minute),
	}
	s.profiles.PutCaregiver(caregiver)
	return caregiver
}

func (s *ServiceSuite) TestAssignSingleCommitsBothRecords() {
	family := s.seedFamily("okafor", 0)
	caregiver := s.seedCaregiver("adaeze")

	assignment, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: caregiver.ID,
		Reason:      "family requested this caregiver",
	})
	s.Require().NoError(err)
	s.True(assignment.IsActive)
	s.Equal(s.operator, assignment.AssignedBy)
	s.Equal(s.now, assignment.CreatedAt)

	linked, err := s.assignments.ListInterventionsByAssignment(s.ctx, assignment.ID)
	s.Require().NoError(err)
	s.Require().Len(linked, 1)
	s.Equal(models.InterventionManualMatch, linked[0].Type)
	s.Equal(assignment.MatchScore, linked[0].AdminMatchScore)

	s.Run("score snapshot survives profile changes", func() {
		snapshot := assignment.MatchScore
		caregiver.CareTypes = id.Tags{"childcare"}
		s.profiles.PutCaregiver(caregiver)

		stored, err := s.assignments.GetAssignment(s.ctx, assignment.ID)
		s.Require().NoError(err)
		s.Equal(snapshot, stored.MatchScore)
	})
}

func (s *ServiceSuite) TestAssignSingleDefaultScoreIsMatchOverall() {
	family := s.seedFamily("okafor", 0)
	caregiver := s.seedCaregiver("adaeze")

	breakdown, err := s.service.ComputeMatchScore(s.ctx, family.ID, caregiver.ID)
	s.Require().NoError(err)

	assignment, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: caregiver.ID,
		Reason:      "no explicit score from the operator",
	})
	s.Require().NoError(err)

	// flexible availability 95, full care-type coverage 100, placeholder
	// proximity 78, missing experience 70, weighted 0.3/0.3/0.2/0.2.
	s.Equal(88, breakdown.Overall)
	s.Equal(breakdown.Overall, assignment.MatchScore)
}

func (s *ServiceSuite) TestAssignSingleRequiresReason() {
	family := s.seedFamily("okafor", 0)
	caregiver := s.seedCaregiver("adaeze")

	_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: caregiver.ID,
		Reason:      "   ",
	})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))

	active, err := s.assignments.GetActiveAssignment(s.ctx, family.ID)
	s.Require().NoError(err)
	s.Nil(active)
}

func (s *ServiceSuite) TestAssignSingleRejectsAtCapacityUnlessOverridden() {
	caregiver := s.seedCaregiver("adaeze")
	for range 5 {
		family := s.seedFamily("seed", 0)
		_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
			FamilyID:    family.ID,
			CaregiverID: caregiver.ID,
			Reason:      "capacity filler",
		})
		s.Require().NoError(err)
	}

	family := s.seedFamily("sixth", 0)
	_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: caregiver.ID,
		Reason:      "one too many",
	})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeMatchRejected), "got %v", err)

	s.Run("override commits past capacity", func() {
		assignment, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
			FamilyID:      family.ID,
			CaregiverID:   caregiver.ID,
			Reason:        "operator knows best",
			AllowOverride: true,
		})
		s.Require().NoError(err)
		s.True(assignment.IsActive)

		count, err := s.assignments.CountActiveAssignments(s.ctx, caregiver.ID)
		s.Require().NoError(err)
		s.Equal(6, count)
	})
}

func (s *ServiceSuite) TestAssignSingleConflictsOnActiveAssignment() {
	family := s.seedFamily("okafor", 0)
	first := s.seedCaregiver("adaeze")
	second := s.seedCaregiver("bola")

	_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: first.ID,
		Reason:      "initial placement",
	})
	s.Require().NoError(err)

	_, err = s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: second.ID,
		Reason:      "double booking",
	})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestReassignmentDeactivatesPrevious() {
	family := s.seedFamily("okafor", 0)
	first := s.seedCaregiver("adaeze")
	second := s.seedCaregiver("bola")

	original, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: first.ID,
		Reason:      "initial placement",
	})
	s.Require().NoError(err)

	replacement, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:         family.ID,
		CaregiverID:      second.ID,
		InterventionType: models.InterventionReassignment,
		Reason:           "previous caregiver relocated",
	})
	s.Require().NoError(err)

	previous, err := s.assignments.GetAssignment(s.ctx, original.ID)
	s.Require().NoError(err)
	s.False(previous.IsActive)

	active, err := s.assignments.GetActiveAssignment(s.ctx, family.ID)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal(replacement.ID, active.ID)
}

func (s *ServiceSuite) TestDeactivateAssignment() {
	family := s.seedFamily("okafor", 0)
	caregiver := s.seedCaregiver("adaeze")

	assignment, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: caregiver.ID,
		Reason:      "initial placement",
	})
	s.Require().NoError(err)

	deactivated, err := s.service.DeactivateAssignment(s.ctx, assignment.ID)
	s.Require().NoError(err)
	s.False(deactivated.IsActive)

	s.Run("second deactivation conflicts", func() {
		_, err := s.service.DeactivateAssignment(s.ctx, assignment.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("failed match raises the family's priority", func() {
		score, err := s.service.ComputePriorityScore(s.ctx, family.ID)
		s.Require().NoError(err)
		s.Equal(10, score.Breakdown.FailedMatches)
	})
}

func (s *ServiceSuite) TestComputePriorityScoreNotFound() {
	_, err := s.service.ComputePriorityScore(s.ctx, id.NewFamilyID())
	s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListUnassignedFamiliesPriorityOrder() {
	longWait := s.seedFamily("long wait", 20*24*time.Hour)
	urgent := s.seedFamily("urgent", 24*time.Hour)
	s.profiles.PutCareNeeds(&models.CareNeeds{
		FamilyID:      urgent.ID,
		EmergencyPlan: "hospital transfer protocol",
		ChronicIllnessType: "copd",
	})
	assigned := s.seedFamily("already placed", 40*24*time.Hour)
	caregiver := s.seedCaregiver("adaeze")
	_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    assigned.ID,
		CaregiverID: caregiver.ID,
		Reason:      "placed before listing",
	})
	s.Require().NoError(err)

	cohort, err := s.service.ListUnassignedFamilies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cohort, 2)

	// urgent: 50 + 2 + 20 + 10 = 82; long wait: 50 + 30 = 80
	s.Equal(urgent.ID, cohort[0].Family.ID)
	s.Equal(82, cohort[0].Priority.Score)
	s.Equal(models.TierCritical, cohort[0].Priority.Tier)
	s.Equal(longWait.ID, cohort[1].Family.ID)
	s.Equal(80, cohort[1].Priority.Score)
}

func (s *ServiceSuite) TestListUnassignedFamiliesTieBreaksOnLongestWait() {
	newer := s.seedFamily("newer", 24*time.Hour)
	older := s.seedFamily("older", 48*time.Hour)

	// Same priority contribution shape, wait under the cap for both.
	cohort, err := s.service.ListUnassignedFamilies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(cohort, 2)
	if cohort[0].Priority.Score == cohort[1].Priority.Score {
		s.Equal(older.ID, cohort[0].Family.ID)
	} else {
		s.Greater(cohort[0].Priority.Score, cohort[1].Priority.Score)
		s.Equal(older.ID, cohort[0].Family.ID)
	}
	s.Equal(newer.ID, cohort[1].Family.ID)
}

func (s *ServiceSuite) TestListAvailableCaregiversAnnotatesLoad() {
	caregiver := s.seedCaregiver("adaeze")
	idle := s.seedCaregiver("bola")
	family := s.seedFamily("okafor", 0)
	_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    family.ID,
		CaregiverID: caregiver.ID,
		Reason:      "initial placement",
	})
	s.Require().NoError(err)

	pool, err := s.service.ListAvailableCaregivers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(pool, 2)

	byID := map[id.CaregiverID]int{}
	for _, c := range pool {
		byID[c.ID] = c.ActiveAssignments
	}
	s.Equal(1, byID[caregiver.ID])
	s.Equal(0, byID[idle.ID])
}

func (s *ServiceSuite) TestAssignBulkRoundRobin() {
	families := []*models.FamilyProfile{
		s.seedFamily("first", 30*24*time.Hour),
		s.seedFamily("second", 20*24*time.Hour),
		s.seedFamily("third", 10*24*time.Hour),
	}
	first := s.seedCaregiver("adaeze")
	second := s.seedCaregiver("bola")

	result, err := s.service.AssignBulk(s.ctx, &models.BulkAssignRequest{
		FamilyIDs: []id.FamilyID{families[2].ID, families[0].ID, families[1].ID},
		Reason:    "monthly intake batch",
	})
	s.Require().NoError(err)
	s.Equal(3, result.Committed)
	s.Zero(result.Skipped)
	s.Zero(result.Failed)

	// Priority order is longest wait first; the pool alternates 0,1,0.
	s.Require().Len(result.Items, 3)
	s.Equal(families[0].ID, result.Items[0].FamilyID)
	s.Equal(first.ID, *result.Items[0].CaregiverID)
	s.Equal(families[1].ID, result.Items[1].FamilyID)
	s.Equal(second.ID, *result.Items[1].CaregiverID)
	s.Equal(families[2].ID, result.Items[2].FamilyID)
	s.Equal(first.ID, *result.Items[2].CaregiverID)

	s.Run("bulk default admin score is snapshotted", func() {
		active, err := s.assignments.GetActiveAssignment(s.ctx, families[0].ID)
		s.Require().NoError(err)
		s.Equal(80, active.MatchScore)
	})

	s.Run("progress reports a finished batch", func() {
		progress, err := s.service.GetBulkProgress(s.ctx, result.BatchID)
		s.Require().NoError(err)
		s.True(progress.Done)
		s.Equal(3, progress.Completed)
		s.Equal(3, progress.Total)
		s.InDelta(1.0, progress.Fraction(), 0.0001)
	})
}

func (s *ServiceSuite) TestAssignBulkEmptyReasonHasNoSideEffects() {
	family := s.seedFamily("okafor", 0)
	s.seedCaregiver("adaeze")

	_, err := s.service.AssignBulk(s.ctx, &models.BulkAssignRequest{
		FamilyIDs: []id.FamilyID{family.ID},
		Reason:    "",
	})
	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))

	active, err := s.assignments.GetActiveAssignment(s.ctx, family.ID)
	s.Require().NoError(err)
	s.Nil(active)
}

func (s *ServiceSuite) TestAssignBulkManualPairingSkipsUnresolved() {
	paired := s.seedFamily("paired", 48*time.Hour)
	unpaired := s.seedFamily("unpaired", 24*time.Hour)
	caregiver := s.seedCaregiver("adaeze")

	result, err := s.service.AssignBulk(s.ctx, &models.BulkAssignRequest{
		FamilyIDs: []id.FamilyID{paired.ID, unpaired.ID},
		Pairing:   map[id.FamilyID]id.CaregiverID{paired.ID: caregiver.ID},
		Reason:    "operator pairing",
	})
	s.Require().NoError(err)
	s.Equal(1, result.Committed)
	s.Equal(1, result.Skipped)
	s.Zero(result.Failed)

	active, err := s.assignments.GetActiveAssignment(s.ctx, unpaired.ID)
	s.Require().NoError(err)
	s.Nil(active)
}

func (s *ServiceSuite) TestAssignBulkIsolatesItemFailures() {
	healthy := s.seedFamily("healthy", 48*time.Hour)
	missing := id.NewFamilyID()
	caregiver := s.seedCaregiver("adaeze")

	result, err := s.service.AssignBulk(s.ctx, &models.BulkAssignRequest{
		FamilyIDs: []id.FamilyID{healthy.ID, missing},
		Pairing: map[id.FamilyID]id.CaregiverID{
			healthy.ID: caregiver.ID,
			missing:    caregiver.ID,
		},
		Reason: "batch with a stale id",
	})
	s.Require().NoError(err)
	s.Equal(1, result.Committed)
	s.Equal(1, result.Failed)

	active, err := s.assignments.GetActiveAssignment(s.ctx, healthy.ID)
	s.Require().NoError(err)
	s.NotNil(active)
}

func (s *ServiceSuite) TestAssignBulkFailsAlreadyAssignedFamilies() {
	placed := s.seedFamily("placed", 72*time.Hour)
	waiting := s.seedFamily("waiting", 24*time.Hour)
	first := s.seedCaregiver("adaeze")
	second := s.seedCaregiver("bola")

	_, err := s.service.AssignSingle(s.ctx, &models.SingleAssignRequest{
		FamilyID:    placed.ID,
		CaregiverID: first.ID,
		Reason:      "intake placement",
	})
	s.Require().NoError(err)

	result, err := s.service.AssignBulk(s.ctx, &models.BulkAssignRequest{
		FamilyIDs: []id.FamilyID{placed.ID, waiting.ID},
		Pairing: map[id.FamilyID]id.CaregiverID{
			placed.ID:  second.ID,
			waiting.ID: second.ID,
		},
		Reason: "batch naming a placed family",
	})
	s.Require().NoError(err)
	s.Equal(1, result.Committed)
	s.Equal(1, result.Failed)
	s.Zero(result.Skipped)

	for _, item := range result.Items {
		if item.FamilyID == placed.ID {
			s.Equal(models.BulkItemFailed, item.Status)
			s.Contains(item.Error, "already has an active assignment")
		}
	}

	// The placed family keeps its original assignment, untouched by the batch.
	active, err := s.assignments.GetActiveAssignment(s.ctx, placed.ID)
	s.Require().NoError(err)
	s.Equal(first.ID, active.CaregiverID)
	count, err := s.assignments.CountActiveAssignments(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestAssignBulkPerItemScores() {
	family := s.seedFamily("okafor", 0)
	caregiver := s.seedCaregiver("adaeze")

	result, err := s.service.AssignBulk(s.ctx, &models.BulkAssignRequest{
		FamilyIDs:  []id.FamilyID{family.ID},
		Pairing:    map[id.FamilyID]id.CaregiverID{family.ID: caregiver.ID},
		Reason:     "scored batch",
		ItemScores: map[id.FamilyID]int{family.ID: 91},
	})
	s.Require().NoError(err)
	s.Equal(1, result.Committed)

	active, err := s.assignments.GetActiveAssignment(s.ctx, family.ID)
	s.Require().NoError(err)
	s.Equal(91, active.MatchScore)
}

func (s *ServiceSuite) TestValidateMatchPreview() {
	family := s.seedFamily("okafor", 0)
	caregiver := s.seedCaregiver("adaeze")

	result := s.service.ValidateMatch(s.ctx, family.ID, caregiver.ID, 0, false)
	s.True(result.IsValid)
	s.NotEmpty(result.Recommendations)
}
