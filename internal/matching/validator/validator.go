// Package validator produces the pass/fail verdict for one proposed
// caregiver-family pairing. It never returns an error to callers: anything
// that goes wrong while reading inputs degrades to a rejected result.
package validator

import (
	"context"
	"log/slog"
	"math"

	"carebridge/internal/matching/config"
	"carebridge/internal/matching/models"
	"carebridge/internal/matching/ports"
	id "carebridge/pkg/domain"
)

// Validator checks a proposed pairing against compatibility, schedule,
// geography, and workload thresholds.
type Validator struct {
	cfg         *config.Config
	families    ports.FamilyStore
	caregivers  ports.CaregiverStore
	assignments ports.AssignmentStore
	logger      *slog.Logger
}

// New constructs a validator. A nil cfg falls back to production defaults.
func New(cfg *config.Config, families ports.FamilyStore, caregivers ports.CaregiverStore, assignments ports.AssignmentStore, logger *slog.Logger) *Validator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		cfg:         cfg,
		families:    families,
		caregivers:  caregivers,
		assignments: assignments,
		logger:      logger,
	}
}

const overrideWarning = "Match was manually overridden despite validation issues"

// Validate resolves both profiles and scores the pairing. minScore <= 0 falls
// back to the configured floor. The result always carries at least one
// recommendation.
func (v *Validator) Validate(ctx context.Context, familyID id.FamilyID, caregiverID id.CaregiverID, minScore int, allowOverride bool) *models.ValidationResult {
	if minScore <= 0 {
		minScore = v.cfg.MinMatchScore
	}

	family, err := v.families.GetFamily(ctx, familyID)
	if err != nil {
		return v.rejected(ctx, err, "Family profile could not be resolved")
	}
	caregiver, err := v.caregivers.GetCaregiver(ctx, caregiverID)
	if err != nil {
		return v.rejected(ctx, err, "Caregiver profile could not be resolved")
	}
	if !caregiver.AvailableForMatching {
		return &models.ValidationResult{
			IsValid:         false,
			Issues:          []string{"Caregiver is not available for matching"},
			Recommendations: []string{"Select a caregiver marked available for matching"},
		}
	}

	needs, err := v.families.GetCareNeeds(ctx, familyID)
	if err != nil {
		return v.rejected(ctx, err, "Care needs could not be resolved")
	}
	activeCount, err := v.assignments.CountActiveAssignments(ctx, caregiverID)
	if err != nil {
		return v.rejected(ctx, err, "Caregiver workload could not be resolved")
	}

	return v.evaluate(family, caregiver, needs, activeCount, minScore, allowOverride)
}

func (v *Validator) evaluate(family *models.FamilyProfile, caregiver *models.CaregiverProfile, needs *models.CareNeeds, activeCount, minScore int, allowOverride bool) *models.ValidationResult {
	w := v.cfg.Validator

	components := models.ValidationComponents{
		CareType:  coverageScore(family.CareTypes, caregiver.CareTypes, v.cfg.Match.DefaultOnMissing),
		Schedule:  v.scheduleScore(needs.RequiredSchedule(), caregiver.AvailabilitySchedule),
		Geography: v.cfg.ProximityScorer(family.Address, caregiver.Address),
		Workload:  v.workloadScore(activeCount),
	}

	score := int(math.Round(
		float64(components.CareType)*w.CareType +
			float64(components.Schedule)*w.Schedule +
			float64(components.Geography)*w.Geography +
			float64(components.Workload)*w.Workload,
	))

	var issues []string
	if components.CareType < w.CareTypeThreshold {
		issues = append(issues, "Care type compatibility is below threshold")
	}
	if components.Schedule < w.ScheduleThreshold {
		issues = append(issues, "Schedule compatibility is below threshold")
	}
	if components.Geography < w.GeographyThreshold {
		issues = append(issues, "Geographic distance may be impractical")
	}
	if components.Workload < w.WorkloadThreshold {
		if components.Workload == 0 {
			issues = append(issues, "Caregiver is at maximum assignment capacity")
		} else {
			issues = append(issues, "Caregiver workload is near capacity")
		}
	}
	if score < minScore {
		issues = append(issues, "Overall match score is below the acceptance floor")
	}

	result := &models.ValidationResult{
		Score:      score,
		Components: components,
		Issues:     issues,
	}

	switch {
	case len(issues) == 0:
		result.IsValid = true
		result.Recommendations = []string{"Good match, no validation issues found"}
	case allowOverride:
		result.IsValid = true
		result.Overridden = true
		result.Recommendations = append([]string{overrideWarning}, issues...)
	default:
		result.IsValid = false
		result.Recommendations = []string{"Resolve the listed issues or apply a manual override"}
	}
	return result
}

func (v *Validator) rejected(ctx context.Context, err error, issue string) *models.ValidationResult {
	v.logger.WarnContext(ctx, "match validation degraded to reject", "error", err)
	return &models.ValidationResult{
		IsValid:         false,
		Issues:          []string{issue},
		Recommendations: []string{"Verify the selected family and caregiver and retry"},
	}
}

func (v *Validator) scheduleScore(required, offered id.Tags) int {
	if offered.ContainsAny("flexible", "24/7") {
		return v.cfg.Match.FlexibleAvailability
	}
	return coverageScore(required, offered, v.cfg.Match.DefaultOnMissing)
}

// workloadScore is 0 at or past capacity, otherwise scales with remaining
// headroom.
func (v *Validator) workloadScore(activeCount int) int {
	limit := v.cfg.MaxAssignments
	if activeCount >= limit {
		return 0
	}
	return int(math.Round(float64(limit-activeCount) / float64(limit) * 100))
}

func coverageScore(required, offered id.Tags, defaultOnMissing int) int {
	if required.IsEmpty() || offered.IsEmpty() {
		return defaultOnMissing
	}
	return int(math.Round(offered.CoverageOf(required) * 100))
}
