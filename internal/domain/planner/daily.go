package planner

import (
	"math"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/scoring"
)

// DailyPlan lists the daily tasks needed to recover. Remedial tasks appear only
// for the reasons present; skill practice and interview prep are always added.
func DailyPlan(reasons []string, daysToSave float64, dominantSkill string) model.DailyPlan {
	tasks := make([]model.PlanTask, 0, 5)
	if scoring.HasReason(reasons, scoring.ReasonLowAttendance) {
		tasks = append(tasks, model.PlanTask{Task: "Attend all classes", Hours: 6})
	}
	if scoring.HasReason(reasons, scoring.ReasonLowMarks) {
		tasks = append(tasks, model.PlanTask{Task: "Revise core subjects", Hours: 3})
	}
	if scoring.HasReason(reasons, scoring.ReasonLowCerts) {
		tasks = append(tasks, model.PlanTask{Task: "Complete one professional certification", Hours: 2})
	}
	tasks = append(tasks,
		model.PlanTask{Task: dominantSkill + " daily practice", Hours: 2},
		model.PlanTask{Task: "Mock interview / Resume improvement", Hours: 1},
	)

	hours := 0
	for _, t := range tasks {
		hours += t.Hours
	}
	return model.DailyPlan{
		DailyHoursRequired: hours,
		DaysRequired:       int(math.Floor(math.Max(daysToSave, 0))),
		Tasks:              tasks,
	}
}
