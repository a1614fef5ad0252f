// Package pipeline runs the scoring chain over a feed snapshot and reduces it
// into the aggregate views. Every function is pure over its inputs.
package pipeline

import (
	"strings"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/planner"
	"github.com/okian/empiria/internal/domain/scoring"
	"github.com/okian/empiria/internal/domain/signals"
)

// Analyze runs the full chain for one student.
func Analyze(s model.StudentRecord, weights scoring.WeightTable) model.AnalyticsRecord {
	res := scoring.ComputeCSI(s, weights)
	reasons := scoring.Explain(res.Attendance, res.InternalAvg, res.CertScore)
	tl := signals.RiskTimeline(res.Attendance, res.InternalAvg, res.CertScore, res.CSI)
	dropout, urgency := signals.Dropout(res.Attendance, res.InternalAvg, res.CertScore, res.CSI, tl.DaysToCritical)
	skills := signals.AnalyzeSkills(s.Branch, res.CertScore, res.CSI)
	priority := signals.InterventionPriority(res.CSI, res.CertScore, res.Attendance)

	return model.AnalyticsRecord{
		ID:                     s.ID,
		Name:                   s.Name,
		Branch:                 s.Branch,
		CSI:                    res.CSI,
		Status:                 scoring.StatusFor(res.CSI),
		Reasons:                reasons,
		CriticalInDays:         tl.DaysToCritical,
		DropoutProbability:     dropout,
		RescueUrgency:          urgency,
		DaysToSave:             tl.DaysToSave,
		PriorityScore:          priority,
		Roadmap:                planner.Roadmap(s.Branch, reasons),
		WeakSkills:             skills.Weak,
		DominantSkill:          skills.Dominant,
		SuccessPath:            skills.SuccessPath,
		EmployabilityScore:     skills.Employability,
		PlacementProbability:   signals.PlacementProbability(res.CSI, skills.Employability),
		DailyRecoveryPlan:      planner.DailyPlan(reasons, tl.DaysToSave, skills.Dominant),
		CompanyPath:            planner.CompanyMap(skills.Dominant, skills.Employability),
		CertificateCredibility: res.Credibility.Tag,
		IncomeTimeline:         planner.IncomeTimeline(priority),
	}
}

// AnalyzeAll learns the weight table once from outcomes and analyzes every
// student in feed order.
func AnalyzeAll(students []model.StudentRecord, outcomes []model.OutcomeRecord) []model.AnalyticsRecord {
	weights := scoring.LearnWeights(outcomes)
	out := make([]model.AnalyticsRecord, 0, len(students))
	for _, s := range students {
		out = append(out, Analyze(s, weights))
	}
	return out
}

// Mentor actions by urgency.
const (
	ActionHigh   = "Immediate 1-on-1 mentoring"
	ActionMedium = "Group mentoring + certification plan"
)

// MentorQueue lists HIGH and MEDIUM urgency students in feed order.
func MentorQueue(students []model.StudentRecord, outcomes []model.OutcomeRecord) []model.MentorEntry {
	weights := scoring.LearnWeights(outcomes)
	queue := make([]model.MentorEntry, 0)
	for _, s := range students {
		res := scoring.ComputeCSI(s, weights)
		tl := signals.RiskTimeline(res.Attendance, res.InternalAvg, res.CertScore, res.CSI)
		_, urgency := signals.Dropout(res.Attendance, res.InternalAvg, res.CertScore, res.CSI, tl.DaysToCritical)
		var action string
		switch urgency {
		case model.UrgencyHigh:
			action = ActionHigh
		case model.UrgencyMedium:
			action = ActionMedium
		default:
			continue
		}
		queue = append(queue, model.MentorEntry{
			Name:    s.Name,
			Branch:  s.Branch,
			Urgency: urgency,
			Action:  action,
		})
	}
	return queue
}

// csiValues scores every student once against a single weight table.
func csiValues(students []model.StudentRecord, outcomes []model.OutcomeRecord) []float64 {
	weights := scoring.LearnWeights(outcomes)
	values := make([]float64, len(students))
	for i, s := range students {
		values[i] = scoring.ComputeCSI(s, weights).CSI
	}
	return values
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
