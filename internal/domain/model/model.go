// Package model contains domain models passed between layers.
package model

import "time"

// StudentRecord is one row of the student feed. Numeric columns are kept as
// the raw cell text so that malformed values reach the scoring stages intact
// and are absorbed there by safe parsing.
type StudentRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	Attendance  string `json:"attendance"`
	InternalAvg string `json:"internal_avg"`
	CertType    string `json:"cert_type"`
	CertSource  string `json:"cert_source"`
}

// OutcomeRecord is one historical placement outcome.
type OutcomeRecord struct {
	ID       string `json:"id"`
	CertType string `json:"cert_type"`
	Placed   string `json:"placed"` // "yes" or "no", case-insensitive
	Salary   string `json:"salary"`
	Days     string `json:"days"`
}

// OutcomeEvent wraps an outcome submitted through the feedback endpoint.
type OutcomeEvent struct {
	FeedbackID string // idempotency key
	Outcome    OutcomeRecord
	ReceivedAt time.Time
}

// SkillDemand is a passthrough row of the skills catalog, keyed by column name.
type SkillDemand map[string]string

// Status buckets a CSI value.
type Status string

// CSI status buckets.
const (
	StatusStable   Status = "Stable"
	StatusAtRisk   Status = "At Risk"
	StatusCritical Status = "Critical"
)

// Urgency is how soon a student is projected to turn critical.
type Urgency string

// Urgency tiers.
const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// PlanTask is one line of a daily recovery plan.
type PlanTask struct {
	Task  string `json:"task"`
	Hours int    `json:"hours"`
}

// DailyPlan is the per-day workload needed to recover.
type DailyPlan struct {
	DailyHoursRequired int        `json:"daily_hours_required"`
	DaysRequired       int        `json:"days_required"`
	Tasks              []PlanTask `json:"daily_plan"`
}

// CompanyPath is the company/salary projection for a dominant skill.
type CompanyPath struct {
	TargetCompanies []string `json:"target_companies"`
	ExpectedSalary  string   `json:"expected_salary"`
	SkillBlockers   []string `json:"skill_blockers"`
}

// AnalyticsRecord is the computed output for one student.
type AnalyticsRecord struct {
	ID                     string      `json:"id"`
	Name                   string      `json:"name"`
	Branch                 string      `json:"branch"`
	CSI                    float64     `json:"csi"`
	Status                 Status      `json:"status"`
	Reasons                []string    `json:"reasons"`
	CriticalInDays         float64     `json:"critical_in_days"`
	DropoutProbability     float64     `json:"dropout_probability"`
	RescueUrgency          Urgency     `json:"rescue_urgency"`
	DaysToSave             float64     `json:"days_to_save"`
	PriorityScore          float64     `json:"priority_score"`
	Roadmap                []string    `json:"roadmap"`
	WeakSkills             []string    `json:"weak_skills"`
	DominantSkill          string      `json:"dominant_skill"`
	SuccessPath            string      `json:"success_path"`
	EmployabilityScore     float64     `json:"employability_score"`
	PlacementProbability   float64     `json:"placement_probability"`
	DailyRecoveryPlan      DailyPlan   `json:"daily_recovery_plan"`
	CompanyPath            CompanyPath `json:"company_path"`
	CertificateCredibility string      `json:"certificate_credibility"`
	IncomeTimeline         string      `json:"income_timeline"`
}

// KPISummary aggregates status counts and the mean CSI.
type KPISummary struct {
	TotalStudents int     `json:"total_students"`
	Stable        int     `json:"stable"`
	AtRisk        int     `json:"at_risk"`
	Critical      int     `json:"critical"`
	HealthScore   float64 `json:"health_score"`
}

// Heatmap is the batch status distribution.
type Heatmap struct {
	TotalStudents  int            `json:"total_students"`
	Distribution   map[Status]int `json:"distribution"`
	RiskPercentage float64        `json:"risk_percentage"`
}

// MentorEntry is one row of the mentor queue.
type MentorEntry struct {
	Name    string  `json:"name"`
	Branch  string  `json:"branch"`
	Urgency Urgency `json:"urgency"`
	Action  string  `json:"action"`
}

// AssistantReply is the answer to a keyword query. Reply is a list of names,
// the skills catalog, or a sentence depending on the intent.
type AssistantReply struct {
	Reply any `json:"reply"`
}
