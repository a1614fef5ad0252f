package pipeline

import (
	"strings"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/numeric"
)

// SalaryStats summarizes salaries of placed outcomes.
type SalaryStats struct {
	Placed  int
	Average float64
	// Low is set when the average falls under the tuning threshold.
	Low bool
}

// SalaryReport averages the salary of placed outcomes. ok is false when no
// outcome is marked placed.
func SalaryReport(outcomes []model.OutcomeRecord, threshold float64) (stats SalaryStats, ok bool) {
	total := 0
	for _, o := range outcomes {
		if strings.ToLower(strings.TrimSpace(o.Placed)) != "yes" {
			continue
		}
		stats.Placed++
		total += numeric.SafeInt(o.Salary, 0)
	}
	if stats.Placed == 0 {
		return SalaryStats{}, false
	}
	stats.Average = numeric.Round(float64(total)/float64(stats.Placed), 2)
	stats.Low = stats.Average < threshold
	return stats, true
}
