package pipeline

import (
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/numeric"
	"github.com/okian/empiria/internal/domain/scoring"
)

// KPISummary counts students per status and averages their CSI. An empty
// feed yields a zero health score.
func KPISummary(students []model.StudentRecord, outcomes []model.OutcomeRecord) model.KPISummary {
	sum := model.KPISummary{TotalStudents: len(students)}
	total := 0.0
	for _, csi := range csiValues(students, outcomes) {
		total += csi
		switch scoring.StatusFor(csi) {
		case model.StatusStable:
			sum.Stable++
		case model.StatusAtRisk:
			sum.AtRisk++
		default:
			sum.Critical++
		}
	}
	sum.HealthScore = mean(total, len(students))
	return sum
}

// Heatmap reports the status distribution and the critical share in percent.
func Heatmap(students []model.StudentRecord, outcomes []model.OutcomeRecord) model.Heatmap {
	dist := map[model.Status]int{
		model.StatusStable:   0,
		model.StatusAtRisk:   0,
		model.StatusCritical: 0,
	}
	for _, csi := range csiValues(students, outcomes) {
		dist[scoring.StatusFor(csi)]++
	}
	h := model.Heatmap{TotalStudents: len(students), Distribution: dist}
	if len(students) > 0 {
		h.RiskPercentage = numeric.Round(float64(dist[model.StatusCritical])/float64(len(students))*100, 2)
	}
	return h
}

func mean(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return numeric.Round(total/float64(n), 2)
}
