package audit

import "time"

// Event is emitted from domain logic to capture assignment actions. Keep it
// transport-agnostic so sinks (slog, Kafka) can fan out.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	OperatorID  string    `json:"operator_id,omitempty"`
	FamilyID    string    `json:"family_id,omitempty"`
	CaregiverID string    `json:"caregiver_id,omitempty"`
	BatchID     string    `json:"batch_id,omitempty"`
	MatchScore  int       `json:"match_score,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// Audit actions emitted by the matching engine.
const (
	EventAssignmentCreated     = "assignment_created"
	EventAssignmentOverridden  = "assignment_overridden"
	EventAssignmentDeactivated = "assignment_deactivated"
	EventBulkBatchStarted      = "bulk_batch_started"
	EventBulkBatchCompleted    = "bulk_batch_completed"
)
