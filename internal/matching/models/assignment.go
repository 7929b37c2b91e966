package models

import (
	"time"

	id "carebridge/pkg/domain"
)

// InterventionType classifies why a human operator created an assignment.
type InterventionType string

const (
	InterventionManualMatch        InterventionType = "manual_match"
	InterventionOverrideAlgorithm  InterventionType = "override_algorithm"
	InterventionReassignment       InterventionType = "reassignment"
	InterventionBulkMatch          InterventionType = "bulk_match"
	InterventionQualityOverride    InterventionType = "quality_override"
	InterventionPriorityAssignment InterventionType = "priority_assignment"
)

// IsValid reports whether the value is a known intervention type.
func (t InterventionType) IsValid() bool {
	switch t {
	case InterventionManualMatch, InterventionOverrideAlgorithm, InterventionReassignment,
		InterventionBulkMatch, InterventionQualityOverride, InterventionPriorityAssignment:
		return true
	}
	return false
}

// InterventionStatus is the lifecycle state of an intervention record.
// Interventions are never mutated after creation except status transitions.
type InterventionStatus string

const (
	InterventionStatusActive    InterventionStatus = "active"
	InterventionStatusCompleted InterventionStatus = "completed"
	InterventionStatusCancelled InterventionStatus = "cancelled"
)

// Assignment is the operational link between one family and one caregiver.
//
// Invariants:
//   - MatchScore is a snapshot taken at creation time; recomputing scores
//     later never alters a stored assignment.
//   - Assignments are deactivated when superseded or cancelled, never
//     hard-deleted.
//   - Every assignment has exactly one originating intervention.
type Assignment struct {
	ID               id.AssignmentID `json:"id"`
	FamilyID         id.FamilyID     `json:"family_id"`
	CaregiverID      id.CaregiverID  `json:"caregiver_id"`
	MatchScore       int             `json:"match_score"`
	AssignmentReason string          `json:"assignment_reason"`
	AssignedBy       id.OperatorID   `json:"assigned_by"`
	IsActive         bool            `json:"is_active"`
	VisitScheduled   bool            `json:"visit_scheduled"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Intervention is the audit record for one assignment action. It carries the
// human-readable trail: who did it, why, and with what score.
type Intervention struct {
	ID              id.InterventionID  `json:"id"`
	AssignmentID    id.AssignmentID    `json:"assignment_id"`
	FamilyID        id.FamilyID        `json:"family_id"`
	CaregiverID     id.CaregiverID     `json:"caregiver_id"`
	Type            InterventionType   `json:"intervention_type"`
	Reason          string             `json:"reason"`
	Notes           string             `json:"notes"`
	AdminMatchScore int                `json:"admin_match_score"`
	Status          InterventionStatus `json:"status"`
	BatchID         *id.BatchID        `json:"batch_id,omitempty"`
	CreatedBy       id.OperatorID      `json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
