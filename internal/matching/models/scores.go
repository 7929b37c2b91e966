package models

// UrgencyTier buckets a family's urgency. The tier is derived from CareNeeds
// content, not from the numeric priority score.
type UrgencyTier string

const (
	TierLow      UrgencyTier = "low"
	TierMedium   UrgencyTier = "medium"
	TierHigh     UrgencyTier = "high"
	TierCritical UrgencyTier = "critical"
)

// PriorityScore is a point-in-time urgency ranking for one family. It is
// recomputed on demand and never persisted.
type PriorityScore struct {
	Score     int               `json:"score"`
	Tier      UrgencyTier       `json:"tier"`
	WaitDays  int               `json:"wait_days"`
	Breakdown PriorityBreakdown `json:"breakdown"`
}

// PriorityBreakdown itemizes the additive components before clamping.
type PriorityBreakdown struct {
	Base           int `json:"base"`
	WaitTime       int `json:"wait_time"`
	MedicalUrgency int `json:"medical_urgency"`
	EmergencyPlan  int `json:"emergency_plan"`
	FailedMatches  int `json:"failed_matches"`
}

// MatchScoreBreakdown is the weighted fit assessment for one caregiver-family
// pair. All components and the overall value are in [0, 100].
type MatchScoreBreakdown struct {
	Overall       int `json:"overall"`
	Availability  int `json:"availability"`
	Compatibility int `json:"compatibility"`
	Proximity     int `json:"proximity"`
	Experience    int `json:"experience"`
}

// ValidationComponents itemizes the validator's component scores.
type ValidationComponents struct {
	CareType  int `json:"care_type"`
	Schedule  int `json:"schedule"`
	Geography int `json:"geography"`
	Workload  int `json:"workload"`
}

// ValidationResult is the validator's verdict for one proposed pairing.
// When an override is applied the issues survive in Recommendations as
// advisory text rather than being dropped.
type ValidationResult struct {
	IsValid         bool                 `json:"is_valid"`
	Score           int                  `json:"score"`
	Components      ValidationComponents `json:"components"`
	Issues          []string             `json:"issues"`
	Recommendations []string             `json:"recommendations"`
	Overridden      bool                 `json:"overridden"`
}

// PrioritizedFamily pairs a family with its computed priority for cohort
// listings.
type PrioritizedFamily struct {
	Family   *FamilyProfile `json:"family"`
	Priority PriorityScore  `json:"priority"`
}
