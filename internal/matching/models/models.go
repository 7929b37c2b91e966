// Package models defines the data model for the caregiver-family matching
// engine: profiles as read by the engine, assignments and interventions as
// written by it, and the derived scoring types.
package models

import (
	"time"

	id "carebridge/pkg/domain"
)

// FamilyProfile is the care-seeking party. Owned by the family; read-only to
// the engine. CreatedAt doubles as the registration timestamp that wait time
// is derived from.
type FamilyProfile struct {
	ID        id.FamilyID `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	CareTypes id.Tags     `json:"care_types"`
	Address   string      `json:"address"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CareNeeds is the optional one-to-one medical detail record for a family.
// Absence of the record is itself meaningful: scoring degrades to defaults
// rather than failing.
type CareNeeds struct {
	FamilyID             id.FamilyID `json:"family_id"`
	DiagnosedConditions  string      `json:"diagnosed_conditions"`
	ChronicIllnessType   string      `json:"chronic_illness_type"`
	EmergencyPlan        string      `json:"emergency_plan"`
	AssistanceMedication bool        `json:"assistance_medication"`
	AssistanceMobility   bool        `json:"assistance_mobility"`
	CareSchedule         id.Tags     `json:"care_schedule"`
	PreferredTimeStart   string      `json:"preferred_time_start"`
	PreferredTimeEnd     string      `json:"preferred_time_end"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// HasMedicalUrgency reports whether diagnosed conditions or a chronic illness
// are recorded.
func (n *CareNeeds) HasMedicalUrgency() bool {
	if n == nil {
		return false
	}
	return n.DiagnosedConditions != "" || n.ChronicIllnessType != ""
}

// HasEmergencyPlan reports whether an emergency plan is recorded.
func (n *CareNeeds) HasEmergencyPlan() bool {
	return n != nil && n.EmergencyPlan != ""
}

// RequiredSchedule returns the family's required shift tags, nil when the
// record is absent.
func (n *CareNeeds) RequiredSchedule() id.Tags {
	if n == nil {
		return nil
	}
	return n.CareSchedule
}

// CaregiverProfile is a professional offering care services. Caregivers with
// AvailableForMatching=false never appear in any candidate pool.
type CaregiverProfile struct {
	ID                   id.CaregiverID `json:"id"`
	Name                 string         `json:"name"`
	Email                string         `json:"email"`
	Phone                string         `json:"phone"`
	CareTypes            id.Tags        `json:"care_types"`
	YearsOfExperience    *int           `json:"years_of_experience,omitempty"`
	AvailabilitySchedule id.Tags        `json:"availability_schedule"`
	AvailableForMatching bool           `json:"available_for_matching"`
	Address              string         `json:"address"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// CaregiverWithLoad annotates a caregiver with their current active
// assignment count for pool listings and round-robin filtering.
type CaregiverWithLoad struct {
	CaregiverProfile
	ActiveAssignments int `json:"active_assignments"`
}
