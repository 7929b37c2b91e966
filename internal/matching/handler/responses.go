package handler

import (
	"carebridge/internal/matching/models"
)

// PriorityResponse is the wire form of a computed priority score.
type PriorityResponse struct {
	FamilyID  string                   `json:"family_id"`
	Score     int                      `json:"score"`
	Tier      models.UrgencyTier       `json:"tier"`
	WaitDays  int                      `json:"wait_days"`
	Breakdown models.PriorityBreakdown `json:"breakdown"`
}

// UnassignedFamilyResponse pairs a family with its priority for the cohort
// listing.
type UnassignedFamilyResponse struct {
	Family   *models.FamilyProfile `json:"family"`
	Priority PriorityResponse      `json:"priority"`
}

func fromPriority(familyID string, score *models.PriorityScore) PriorityResponse {
	return PriorityResponse{
		FamilyID:  familyID,
		Score:     score.Score,
		Tier:      score.Tier,
		WaitDays:  score.WaitDays,
		Breakdown: score.Breakdown,
	}
}

func fromCohort(cohort []*models.PrioritizedFamily) []UnassignedFamilyResponse {
	out := make([]UnassignedFamilyResponse, 0, len(cohort))
	for _, entry := range cohort {
		out = append(out, UnassignedFamilyResponse{
			Family:   entry.Family,
			Priority: fromPriority(entry.Family.ID.String(), &entry.Priority),
		})
	}
	return out
}

// CaregiverPoolResponse is the available-caregiver listing.
type CaregiverPoolResponse struct {
	Caregivers []*models.CaregiverWithLoad `json:"caregivers"`
	Total      int                         `json:"total"`
}
