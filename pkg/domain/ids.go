// Package domain defines typed identifiers and shared value types for the
// matching engine. Typed IDs prevent accidental cross-entity mixups (passing
// a caregiver id where a family id is expected) at compile time.
package domain

import "github.com/google/uuid"

// FamilyID identifies a care-seeking family profile.
type FamilyID uuid.UUID

// CaregiverID identifies a professional caregiver profile.
type CaregiverID uuid.UUID

// AssignmentID identifies an operational caregiver-family assignment.
type AssignmentID uuid.UUID

// InterventionID identifies an audit intervention record.
type InterventionID uuid.UUID

// OperatorID identifies the human operator performing assignments.
type OperatorID uuid.UUID

// BatchID identifies one bulk assignment batch.
type BatchID uuid.UUID

func (id FamilyID) String() string       { return uuid.UUID(id).String() }
func (id CaregiverID) String() string    { return uuid.UUID(id).String() }
func (id AssignmentID) String() string   { return uuid.UUID(id).String() }
func (id InterventionID) String() string { return uuid.UUID(id).String() }
func (id OperatorID) String() string     { return uuid.UUID(id).String() }
func (id BatchID) String() string        { return uuid.UUID(id).String() }

func (id FamilyID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CaregiverID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AssignmentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id InterventionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OperatorID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id BatchID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// NewFamilyID returns a random family id.
func NewFamilyID() FamilyID { return FamilyID(uuid.New()) }

// NewCaregiverID returns a random caregiver id.
func NewCaregiverID() CaregiverID { return CaregiverID(uuid.New()) }

// NewAssignmentID returns a random assignment id.
func NewAssignmentID() AssignmentID { return AssignmentID(uuid.New()) }

// NewInterventionID returns a random intervention id.
func NewInterventionID() InterventionID { return InterventionID(uuid.New()) }

// NewBatchID returns a random batch id.
func NewBatchID() BatchID { return BatchID(uuid.New()) }

// ParseFamilyID parses a family id from its string form.
func ParseFamilyID(s string) (FamilyID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return FamilyID{}, err
	}
	return FamilyID(u), nil
}

// ParseCaregiverID parses a caregiver id from its string form.
func ParseCaregiverID(s string) (CaregiverID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CaregiverID{}, err
	}
	return CaregiverID(u), nil
}

// ParseAssignmentID parses an assignment id from its string form.
func ParseAssignmentID(s string) (AssignmentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AssignmentID{}, err
	}
	return AssignmentID(u), nil
}

// ParseOperatorID parses an operator id from its string form.
func ParseOperatorID(s string) (OperatorID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return OperatorID{}, err
	}
	return OperatorID(u), nil
}

// ParseBatchID parses a batch id from its string form.
func ParseBatchID(s string) (BatchID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return BatchID{}, err
	}
	return BatchID(u), nil
}
