package models

import (
	"strings"

	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
)

// SingleAssignRequest carries everything AssignSingle needs; all human input
// (reason, override) is collected before the coordinator is invoked.
type SingleAssignRequest struct {
	FamilyID         id.FamilyID
	CaregiverID      id.CaregiverID
	InterventionType InterventionType
	Reason           string
	Notes            string
	// AdminScore overrides the computed match score snapshot when > 0.
	AdminScore    int
	AllowOverride bool
}

// Validate enforces the coordinator's preconditions.
func (r *SingleAssignRequest) Validate() error {
	if r.CaregiverID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "caregiver_id is required")
	}
	if r.FamilyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "family_id is required")
	}
	if r.InterventionType == "" {
		r.InterventionType = InterventionManualMatch
	}
	if !r.InterventionType.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown intervention type %q", r.InterventionType)
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "assignment reason is required")
	}
	if r.AdminScore < 0 || r.AdminScore > 100 {
		return dErrors.New(dErrors.CodeValidation, "admin score must be between 0 and 100")
	}
	return nil
}

// BulkAssignRequest describes one operator-initiated batch.
type BulkAssignRequest struct {
	// FamilyIDs is the operator-selected cohort; processed in priority order.
	FamilyIDs []id.FamilyID
	// Pairing maps family to caregiver explicitly. Empty means automatic
	// round-robin pairing over the available caregiver pool.
	Pairing map[id.FamilyID]id.CaregiverID
	// Reason applies to the whole batch and is required before any writes.
	Reason string
	// AdminScore is the batch-wide score snapshot; zero means the configured
	// bulk default.
	AdminScore int
	// ItemScores optionally overrides AdminScore per family.
	ItemScores    map[id.FamilyID]int
	AllowOverride bool
}

// Validate enforces batch-level preconditions before any side effects.
func (r *BulkAssignRequest) Validate() error {
	if len(r.FamilyIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one family must be selected")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "batch reason is required")
	}
	if r.AdminScore < 0 || r.AdminScore > 100 {
		return dErrors.New(dErrors.CodeValidation, "admin score must be between 0 and 100")
	}
	return nil
}

// BulkItemStatus is the outcome of one family within a batch.
type BulkItemStatus string

const (
	BulkItemCommitted BulkItemStatus = "committed"
	BulkItemSkipped   BulkItemStatus = "skipped"
	BulkItemFailed    BulkItemStatus = "failed"
)

// BulkItemResult records what happened to one family in the batch.
type BulkItemResult struct {
	FamilyID     id.FamilyID      `json:"family_id"`
	CaregiverID  *id.CaregiverID  `json:"caregiver_id,omitempty"`
	AssignmentID *id.AssignmentID `json:"assignment_id,omitempty"`
	Status       BulkItemStatus   `json:"status"`
	Error        string           `json:"error,omitempty"`
}

// BulkResult summarizes a completed (or cancelled) batch. Individual item
// failures never fail the batch; only precondition violations do.
type BulkResult struct {
	BatchID   id.BatchID       `json:"batch_id"`
	Committed int              `json:"committed"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}

// BulkProgress is the liveness signal published after each batch item. It is
// not a resumability checkpoint: committed items survive interruption, the
// remainder is lost.
type BulkProgress struct {
	BatchID   id.BatchID `json:"batch_id"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	Committed int        `json:"committed"`
	Skipped   int        `json:"skipped"`
	Failed    int        `json:"failed"`
	Done      bool       `json:"done"`
}

// Fraction returns completed/total in [0, 1].
func (p BulkProgress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}
