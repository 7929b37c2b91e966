// Package ports defines shared interfaces for the matching module.
// Interfaces are placed here when consumed by multiple services to avoid duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"carebridge/internal/audit"
	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/requestcontext"
)

// FamilyStore reads family profiles and their optional care-needs records.
type FamilyStore interface {
	// GetFamily returns sentinel.ErrNotFound when the id does not resolve.
	GetFamily(ctx context.Context, familyID id.FamilyID) (*models.FamilyProfile, error)

	// GetCareNeeds returns (nil, nil) when the family has no care-needs
	// record; absence is meaningful, not an error.
	GetCareNeeds(ctx context.Context, familyID id.FamilyID) (*models.CareNeeds, error)

	// ListUnassignedFamilies returns families with no currently active
	// assignment, in no particular order; callers sort by priority.
	ListUnassignedFamilies(ctx context.Context) ([]*models.FamilyProfile, error)
}

// CaregiverStore reads caregiver profiles.
type CaregiverStore interface {
	// GetCaregiver returns sentinel.ErrNotFound when the id does not resolve.
	GetCaregiver(ctx context.Context, caregiverID id.CaregiverID) (*models.CaregiverProfile, error)

	// ListAvailableCaregivers returns only caregivers with
	// available_for_matching=true; the gate is enforced here, not by callers.
	ListAvailableCaregivers(ctx context.Context) ([]*models.CaregiverProfile, error)
}

// CommitParams is the atomic intervention+assignment write. Both rows become
// visible together or not at all.
type CommitParams struct {
	Intervention models.Intervention
	Assignment   models.Assignment

	// EnforceCapacity re-checks the caregiver's active count under the
	// store's lock and fails with sentinel.ErrCapacity when the commit would
	// exceed it. Zero disables the guard (override path).
	EnforceCapacity int

	// DeactivatePrevious flips the family's current active assignment to
	// inactive in the same transaction (reassignment path).
	DeactivatePrevious bool
}

// AssignmentStore reads and writes assignments and their intervention audit
// records.
type AssignmentStore interface {
	// GetAssignment returns sentinel.ErrNotFound when the id does not resolve.
	GetAssignment(ctx context.Context, assignmentID id.AssignmentID) (*models.Assignment, error)

	// GetActiveAssignment returns (nil, nil) when the family has no active
	// assignment.
	GetActiveAssignment(ctx context.Context, familyID id.FamilyID) (*models.Assignment, error)

	// CountActiveAssignments returns the caregiver's current workload.
	CountActiveAssignments(ctx context.Context, caregiverID id.CaregiverID) (int, error)

	// ListInactiveAssignments returns the family's failed-match history for
	// priority scoring.
	ListInactiveAssignments(ctx context.Context, familyID id.FamilyID) ([]*models.Assignment, error)

	// CommitAssignment writes the intervention and assignment atomically.
	CommitAssignment(ctx context.Context, params CommitParams) (*models.Intervention, *models.Assignment, error)

	// DeactivateAssignment flips is_active to false and cancels the
	// originating intervention. Returns sentinel.ErrNotFound for unknown ids
	// and sentinel.ErrInvalidState when already inactive.
	DeactivateAssignment(ctx context.Context, assignmentID id.AssignmentID, now time.Time) (*models.Assignment, error)
}

// ProgressSink receives bulk batch liveness updates.
type ProgressSink interface {
	// Publish records the latest progress for a batch.
	Publish(ctx context.Context, progress models.BulkProgress) error

	// Fetch returns the last published progress, or sentinel.ErrNotFound for
	// unknown batches.
	Fetch(ctx context.Context, batchID id.BatchID) (*models.BulkProgress, error)
}

// AuditPublisher emits audit events for assignment operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit writes an audit log line and forwards the event to the publisher
// when one is configured. Publisher failures are logged, never propagated:
// audit delivery must not fail the operation it describes.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if logger != nil {
		logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"event", event.Action,
			"operator_id", event.OperatorID,
			"family_id", event.FamilyID,
			"caregiver_id", event.CaregiverID,
			"batch_id", event.BatchID,
			"match_score", event.MatchScore,
			"request_id", event.RequestID,
		)
	}
	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "audit publish failed",
			"event", event.Action,
			"error", err,
		)
	}
}
