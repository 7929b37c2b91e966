package service

import (
	"context"
	"strings"
	"time"

	"carebridge/internal/audit"
	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/requestcontext"
)

// AssignSingle validates and commits one caregiver-family assignment. The
// intervention and assignment rows are written atomically; a family that
// already has an active assignment requires the reassignment intervention
// type, which deactivates the previous assignment in the same transaction.
func (s *Service) AssignSingle(ctx context.Context, req *models.SingleAssignRequest) (*models.Assignment, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		s.metrics.IncrementAssignment("single", "invalid_request")
		return nil, err
	}

	result := s.validator.Validate(ctx, req.FamilyID, req.CaregiverID, 0, req.AllowOverride)
	if !result.IsValid {
		s.metrics.IncrementAssignment("single", "rejected")
		return nil, dErrors.Newf(dErrors.CodeMatchRejected, "match rejected: %s", strings.Join(result.Issues, "; "))
	}

	active, err := s.assignments.GetActiveAssignment(ctx, req.FamilyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load active assignment")
	}
	if active != nil && req.InterventionType != models.InterventionReassignment {
		s.metrics.IncrementAssignment("single", "conflict")
		return nil, dErrors.New(dErrors.CodeConflict, "family already has an active assignment; use a reassignment")
	}

	score := req.AdminScore
	if score == 0 {
		// Default snapshot is the match fit overall, not the validator's
		// aggregate; the two weight different components.
		breakdown, err := s.ComputeMatchScore(ctx, req.FamilyID, req.CaregiverID)
		if err != nil {
			return nil, err
		}
		score = breakdown.Overall
	}

	now := requestcontext.Now(ctx)
	operator := requestcontext.OperatorID(ctx)
	assignment := models.Assignment{
		ID:               id.NewAssignmentID(),
		FamilyID:         req.FamilyID,
		CaregiverID:      req.CaregiverID,
		MatchScore:       score,
		AssignmentReason: req.Reason,
		AssignedBy:       operator,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	intervention := models.Intervention{
		ID:              id.NewInterventionID(),
		FamilyID:        req.FamilyID,
		CaregiverID:     req.CaregiverID,
		Type:            req.InterventionType,
		Reason:          req.Reason,
		Notes:           req.Notes,
		AdminMatchScore: score,
		Status:          models.InterventionStatusActive,
		CreatedBy:       operator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	params := ports.CommitParams{
		Intervention:       intervention,
		Assignment:         assignment,
		EnforceCapacity:    s.capacityGuard(result.Overridden),
		DeactivatePrevious: active != nil,
	}
	committed, committedAssignment, err := s.assignments.CommitAssignment(ctx, params)
	if err != nil {
		s.metrics.IncrementAssignment("single", "commit_failed")
		return nil, translateStoreErr(err, "family or caregiver not found")
	}

	s.invalidatePriority(ctx, req.FamilyID)

	operation := "single"
	if req.InterventionType == models.InterventionReassignment {
		operation = "reassignment"
	}
	s.metrics.IncrementAssignment(operation, "committed")
	s.metrics.ObserveAssignLatency(time.Since(start))

	action := audit.EventAssignmentCreated
	if result.Overridden {
		action = audit.EventAssignmentOverridden
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Timestamp:   now,
		Action:      action,
		OperatorID:  operator.String(),
		FamilyID:    req.FamilyID.String(),
		CaregiverID: req.CaregiverID.String(),
		MatchScore:  committed.AdminMatchScore,
		Reason:      req.Reason,
	})

	return committedAssignment, nil
}

// DeactivateAssignment flips an assignment to inactive and cancels its
// originating intervention.
func (s *Service) DeactivateAssignment(ctx context.Context, assignmentID id.AssignmentID) (*models.Assignment, error) {
	now := requestcontext.Now(ctx)
	assignment, err := s.assignments.DeactivateAssignment(ctx, assignmentID, now)
	if err != nil {
		s.metrics.IncrementAssignment("deactivate", "failed")
		return nil, translateStoreErr(err, "assignment not found")
	}
	s.metrics.IncrementAssignment("deactivate", "committed")
	s.invalidatePriority(ctx, assignment.FamilyID)

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Timestamp:   now,
		Action:      audit.EventAssignmentDeactivated,
		OperatorID:  requestcontext.OperatorID(ctx).String(),
		FamilyID:    assignment.FamilyID.String(),
		CaregiverID: assignment.CaregiverID.String(),
	})
	return assignment, nil
}

// capacityGuard returns the limit CommitAssignment re-checks under its lock.
// Overrides disable the guard; that is the only path past capacity.
func (s *Service) capacityGuard(overridden bool) int {
	if overridden {
		return 0
	}
	return s.cfg.MaxAssignments
}
