// Package scoring computes priority and match scores. Everything here is
// pure: no I/O, no errors — missing data degrades to default scores instead
// of failing, so the caller never has to branch on data completeness.
package scoring

import (
	"math"
	"strings"
	"time"

	"carebridge/internal/matching/config"
	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
)

// Model evaluates families and caregiver-family pairings against the
// configured weights.
type Model struct {
	cfg *config.Config
}

// New constructs a scoring model. A nil config falls back to defaults.
func New(cfg *config.Config) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Model{cfg: cfg}
}

// ComputePriority scores how urgently a family should be served. The
// failed-match penalty is deliberately uncapped before the final clamp:
// repeatedly failed families dominate the queue.
func (m *Model) ComputePriority(family *models.FamilyProfile, needs *models.CareNeeds, failedMatches int, now time.Time) models.PriorityScore {
	w := m.cfg.Priority

	waitDays := 0
	if !family.CreatedAt.IsZero() && now.After(family.CreatedAt) {
		waitDays = int(now.Sub(family.CreatedAt).Hours() / 24)
	}

	breakdown := models.PriorityBreakdown{
		Base:     w.Base,
		WaitTime: min(w.WaitCap, waitDays*w.WaitDayPoints),
	}
	if needs.HasMedicalUrgency() {
		breakdown.MedicalUrgency = w.MedicalUrgency
	}
	if needs.HasEmergencyPlan() {
		breakdown.EmergencyPlan = w.EmergencyPlan
	}
	if failedMatches > 0 {
		breakdown.FailedMatches = failedMatches * w.FailedMatchPenalty
	}

	total := breakdown.Base + breakdown.WaitTime + breakdown.MedicalUrgency +
		breakdown.EmergencyPlan + breakdown.FailedMatches

	return models.PriorityScore{
		Score:     clamp(total),
		Tier:      UrgencyTier(needs),
		WaitDays:  waitDays,
		Breakdown: breakdown,
	}
}

// UrgencyTier derives the tier from CareNeeds content, independent of the
// numeric score.
func UrgencyTier(needs *models.CareNeeds) models.UrgencyTier {
	switch {
	case needs == nil:
		return models.TierLow
	case needs.HasEmergencyPlan() || strings.Contains(strings.ToLower(needs.DiagnosedConditions), "critical"):
		return models.TierCritical
	case needs.HasMedicalUrgency():
		return models.TierHigh
	case needs.AssistanceMedication || needs.AssistanceMobility:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

// ComputeMatch scores a caregiver-family pairing. The overall value is the
// default admin score an operator can still override before committing.
func (m *Model) ComputeMatch(family *models.FamilyProfile, needs *models.CareNeeds, caregiver *models.CaregiverProfile) models.MatchScoreBreakdown {
	w := m.cfg.Match

	availability := m.availabilityScore(needs.RequiredSchedule(), caregiver.AvailabilitySchedule)
	compatibility := m.compatibilityScore(family.CareTypes, caregiver.CareTypes)
	proximity := clamp(m.cfg.ProximityScorer(family.Address, caregiver.Address))
	experience := m.experienceScore(caregiver.YearsOfExperience)

	overall := math.Round(
		float64(availability)*w.Availability +
			float64(compatibility)*w.Compatibility +
			float64(proximity)*w.Proximity +
			float64(experience)*w.Experience,
	)

	return models.MatchScoreBreakdown{
		Overall:       clamp(int(overall)),
		Availability:  availability,
		Compatibility: compatibility,
		Proximity:     proximity,
		Experience:    experience,
	}
}

// availabilityScore is the fraction of required shift tags the caregiver
// covers. A flexible or round-the-clock schedule saturates the score.
func (m *Model) availabilityScore(required, available id.Tags) int {
	w := m.cfg.Match
	if available.ContainsAny("flexible", "24/7") {
		return w.FlexibleAvailability
	}
	if required.IsEmpty() || available.IsEmpty() {
		return w.DefaultOnMissing
	}
	return clamp(int(math.Round(available.CoverageOf(required) * 100)))
}

// compatibilityScore is the fraction of required care-type tags the caregiver
// covers.
func (m *Model) compatibilityScore(required, offered id.Tags) int {
	if required.IsEmpty() || offered.IsEmpty() {
		return m.cfg.Match.DefaultOnMissing
	}
	return clamp(int(math.Round(offered.CoverageOf(required) * 100)))
}

func (m *Model) experienceScore(years *int) int {
	w := m.cfg.Match
	if years == nil {
		return w.DefaultOnMissing
	}
	return clamp(min(100, w.ExperienceBase+*years*w.ExperiencePerYear))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
