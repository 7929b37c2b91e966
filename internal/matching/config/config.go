// Package config holds the matching engine's tunables: capacity, score
// weights, and validation thresholds. Values mirror the product rules; change
// them here, not at call sites.
package config

// Config groups all engine tunables. DefaultConfig returns the production
// values; tests construct variants explicitly.
type Config struct {
	// MaxAssignments is the caregiver capacity limit. A caregiver at or past
	// this count scores 0 on workload and is rejected unless overridden.
	MaxAssignments int

	// MinMatchScore is the default acceptance floor when the caller does not
	// supply one.
	MinMatchScore int

	// BulkDefaultAdminScore is the score snapshot recorded for bulk items
	// without a per-item score.
	BulkDefaultAdminScore int

	Priority  PriorityWeights
	Match     MatchWeights
	Validator ValidatorWeights

	// ProximityScorer computes the geography score from the two addresses.
	// The default is a placeholder; substitute a real distance function here.
	ProximityScorer func(familyAddress, caregiverAddress string) int
}

// PriorityWeights shape the family urgency score (base 50, clamped to 100).
type PriorityWeights struct {
	Base               int
	WaitDayPoints      int // points per day waited
	WaitCap            int // cap on the wait-time contribution
	MedicalUrgency     int // diagnosed conditions or chronic illness present
	EmergencyPlan      int // emergency plan present
	FailedMatchPenalty int // per prior inactive assignment, uncapped before clamp
}

// MatchWeights shape the caregiver-family fit score.
type MatchWeights struct {
	Availability  float64
	Compatibility float64
	Proximity     float64
	Experience    float64

	// DefaultOnMissing is used when either side's data is absent, so missing
	// data degrades confidence without zeroing out a match.
	DefaultOnMissing int
	// FlexibleAvailability is the saturation score when the caregiver's
	// schedule carries a flexible or 24/7 tag.
	FlexibleAvailability int
	// ExperienceBase and ExperiencePerYear: min(100, base + years*perYear).
	ExperienceBase    int
	ExperiencePerYear int
}

// ValidatorWeights shape the validator's aggregate and per-component
// thresholds.
type ValidatorWeights struct {
	CareType  float64
	Schedule  float64
	Geography float64
	Workload  float64

	CareTypeThreshold  int
	ScheduleThreshold  int
	GeographyThreshold int
	WorkloadThreshold  int
}

// DefaultConfig returns the engine's production tunables.
func DefaultConfig() *Config {
	return &Config{
		MaxAssignments:        5,
		MinMatchScore:         60,
		BulkDefaultAdminScore: 80,
		Priority: PriorityWeights{
			Base:               50,
			WaitDayPoints:      2,
			WaitCap:            30,
			MedicalUrgency:     20,
			EmergencyPlan:      10,
			FailedMatchPenalty: 10,
		},
		Match: MatchWeights{
			Availability:         0.3,
			Compatibility:        0.3,
			Proximity:            0.2,
			Experience:           0.2,
			DefaultOnMissing:     70,
			FlexibleAvailability: 95,
			ExperienceBase:       50,
			ExperiencePerYear:    10,
		},
		Validator: ValidatorWeights{
			CareType:           0.3,
			Schedule:           0.3,
			Geography:          0.2,
			Workload:           0.2,
			CareTypeThreshold:  50,
			ScheduleThreshold:  50,
			GeographyThreshold: 40,
			WorkloadThreshold:  50,
		},
		ProximityScorer: PlaceholderProximity,
	}
}

// PlaceholderProximity stands in for real geolocation: both addresses present
// scores 78, otherwise 70. Real distance computation slots in behind the same
// signature.
func PlaceholderProximity(familyAddress, caregiverAddress string) int {
	if familyAddress != "" && caregiverAddress != "" {
		return 78
	}
	return 70
}
