package handler

import (
	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
)

// PairRequest identifies one family-caregiver pair for scoring and
// validation previews.
type PairRequest struct {
	FamilyID    string `json:"family_id"`
	CaregiverID string `json:"caregiver_id"`
	// MinScore applies to validation only; zero means the configured floor.
	MinScore      int  `json:"min_score,omitempty"`
	AllowOverride bool `json:"allow_override,omitempty"`

	familyID    id.FamilyID
	caregiverID id.CaregiverID
}

func (r *PairRequest) Validate() error {
	var err error
	if r.familyID, err = id.ParseFamilyID(r.FamilyID); err != nil {
		return dErrors.New(dErrors.CodeValidation, "family_id must be a valid uuid")
	}
	if r.caregiverID, err = id.ParseCaregiverID(r.CaregiverID); err != nil {
		return dErrors.New(dErrors.CodeValidation, "caregiver_id must be a valid uuid")
	}
	if r.MinScore < 0 || r.MinScore > 100 {
		return dErrors.New(dErrors.CodeValidation, "min_score must be between 0 and 100")
	}
	return nil
}

// AssignRequest is the wire form of a single assignment.
type AssignRequest struct {
	FamilyID         string `json:"family_id"`
	CaregiverID      string `json:"caregiver_id"`
	InterventionType string `json:"intervention_type,omitempty"`
	Reason           string `json:"reason"`
	Notes            string `json:"notes,omitempty"`
	AdminScore       int    `json:"admin_score,omitempty"`
	AllowOverride    bool   `json:"allow_override,omitempty"`

	domain models.SingleAssignRequest
}

func (r *AssignRequest) Validate() error {
	familyID, err := id.ParseFamilyID(r.FamilyID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "family_id must be a valid uuid")
	}
	caregiverID, err := id.ParseCaregiverID(r.CaregiverID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "caregiver_id must be a valid uuid")
	}
	r.domain = models.SingleAssignRequest{
		FamilyID:         familyID,
		CaregiverID:      caregiverID,
		InterventionType: models.InterventionType(r.InterventionType),
		Reason:           r.Reason,
		Notes:            r.Notes,
		AdminScore:       r.AdminScore,
		AllowOverride:    r.AllowOverride,
	}
	return r.domain.Validate()
}

// Domain returns the validated service-layer request.
func (r *AssignRequest) Domain() *models.SingleAssignRequest {
	return &r.domain
}

// BulkAssignRequest is the wire form of a bulk batch.
type BulkAssignRequest struct {
	FamilyIDs     []string          `json:"family_ids"`
	Pairing       map[string]string `json:"pairing,omitempty"`
	Reason        string            `json:"reason"`
	AdminScore    int               `json:"admin_score,omitempty"`
	ItemScores    map[string]int    `json:"item_scores,omitempty"`
	AllowOverride bool              `json:"allow_override,omitempty"`

	domain models.BulkAssignRequest
}

func (r *BulkAssignRequest) Validate() error {
	familyIDs := make([]id.FamilyID, 0, len(r.FamilyIDs))
	for _, raw := range r.FamilyIDs {
		familyID, err := id.ParseFamilyID(raw)
		if err != nil {
			return dErrors.Newf(dErrors.CodeValidation, "family id %q is not a valid uuid", raw)
		}
		familyIDs = append(familyIDs, familyID)
	}

	var pairing map[id.FamilyID]id.CaregiverID
	if len(r.Pairing) > 0 {
		pairing = make(map[id.FamilyID]id.CaregiverID, len(r.Pairing))
		for rawFamily, rawCaregiver := range r.Pairing {
			familyID, err := id.ParseFamilyID(rawFamily)
			if err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "pairing family id %q is not a valid uuid", rawFamily)
			}
			caregiverID, err := id.ParseCaregiverID(rawCaregiver)
			if err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "pairing caregiver id %q is not a valid uuid", rawCaregiver)
			}
			pairing[familyID] = caregiverID
		}
	}

	var itemScores map[id.FamilyID]int
	if len(r.ItemScores) > 0 {
		itemScores = make(map[id.FamilyID]int, len(r.ItemScores))
		for rawFamily, score := range r.ItemScores {
			familyID, err := id.ParseFamilyID(rawFamily)
			if err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "item score family id %q is not a valid uuid", rawFamily)
			}
			if score < 0 || score > 100 {
				return dErrors.New(dErrors.CodeValidation, "item scores must be between 0 and 100")
			}
			itemScores[familyID] = score
		}
	}

	r.domain = models.BulkAssignRequest{
		FamilyIDs:     familyIDs,
		Pairing:       pairing,
		Reason:        r.Reason,
		AdminScore:    r.AdminScore,
		ItemScores:    itemScores,
		AllowOverride: r.AllowOverride,
	}
	return r.domain.Validate()
}

// Domain returns the validated service-layer request.
func (r *BulkAssignRequest) Domain() *models.BulkAssignRequest {
	return &r.domain
}
