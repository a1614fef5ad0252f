// Package signals derives risk and opportunity signals from a computed CSI:
// the risk timeline, dropout probability, intervention priority, skill
// employability and placement probability. Every function is total.
package signals

import (
	"math"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/numeric"
)

const (
	criticalLine   = 59.0
	saveLine       = 80.0
	maxCriticalIn  = 120.0
	maxDaysToSave  = 90.0
	minDecayRate   = 0.5
	decayDivisor   = 30.0
	certGapPenalty = 10.0
	certGapLimit   = 2.0
	recoveryPerPt  = 0.3

	highUrgencyDays   = 30.0
	mediumUrgencyDays = 60.0

	priorityBase        = 80.0
	priorityCertLimit   = 7.0
	priorityAttendLimit = 70
)

// Timeline projects how long until a student turns critical and how long a
// recovery would take.
type Timeline struct {
	DaysToCritical float64
	DaysToSave     float64
}

// RiskTimeline projects days-to-critical in [0,120] and days-to-save in [0,90].
// The decay rate never drops below 0.5 so that healthy students do not divide
// by a vanishing rate.
func RiskTimeline(att, avg int, certScore, csi float64) Timeline {
	certGap := 0.0
	if certScore <= certGapLimit {
		certGap = 1
	}
	decay := (float64(75-att)/2 + float64(65-avg) + certGap*certGapPenalty) / decayDivisor
	decay = math.Max(decay, minDecayRate)
	toCritical := numeric.Clamp((csi-criticalLine)/decay, 0, maxCriticalIn)

	recovery := 1 + certScore*recoveryPerPt
	toSave := numeric.Clamp((saveLine-csi)/recovery, 0, maxDaysToSave)

	return Timeline{
		DaysToCritical: numeric.Round(toCritical, 1),
		DaysToSave:     numeric.Round(toSave, 1),
	}
}

// Dropout estimates the dropout probability in [0,100] and the rescue urgency.
func Dropout(att, avg int, certScore, csi, daysToCritical float64) (float64, model.Urgency) {
	certPenalty := 0.0
	if certScore <= certGapLimit {
		certPenalty = 20
	}
	raw := ((saveLine - csi) + float64(75-att) + float64(65-avg) + certPenalty) / 2
	return numeric.Round(numeric.Clamp(raw, 0, 100), 2), UrgencyFor(daysToCritical)
}

// UrgencyFor tiers a days-to-critical projection.
func UrgencyFor(daysToCritical float64) model.Urgency {
	switch {
	case daysToCritical < highUrgencyDays:
		return model.UrgencyHigh
	case daysToCritical < mediumUrgencyDays:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

// InterventionPriority ranks how badly a student needs help. The gap to 80 is
// doubled for weak certification and then scaled by 1.5 for attendance below
// 70. The result is never negative and has no upper bound.
func InterventionPriority(csi, certScore float64, att int) float64 {
	p := priorityBase - csi
	if certScore < priorityCertLimit {
		p *= 2
	}
	if att < priorityAttendLimit {
		p *= 1.5
	}
	return numeric.Round(math.Max(p, 0), 2)
}
