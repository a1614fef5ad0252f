package scoring

import (
	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/numeric"
)

// CSI weighting and bounds.
const (
	attendanceWeight = 0.4
	marksWeight      = 0.4
	certScale        = 10
	maxCSI           = 100.0

	stableThreshold = 80.0
	atRiskThreshold = 60.0
)

// Result is the CSI computation for one student.
type Result struct {
	Attendance  int
	InternalAvg int
	BaseScore   float64
	CertScore   float64
	CSI         float64
	Credibility Credibility
}

// ComputeCSI scores a student. The certificate term is not clamped on its own,
// so a fake source can pull the base score down; only the final sum is bounded.
func ComputeCSI(s model.StudentRecord, weights WeightTable) Result {
	att := numeric.SafeInt(s.Attendance, 0)
	avg := numeric.SafeInt(s.InternalAvg, 0)
	cred := ResolveCredibility(s.CertType, s.CertSource)

	base := float64(att)*attendanceWeight + float64(avg)*marksWeight
	certScore := weights.Weight(s.CertType) * certScale * cred.Weight
	csi := numeric.Clamp(base+certScore, 0, maxCSI)

	return Result{
		Attendance:  att,
		InternalAvg: avg,
		BaseScore:   base,
		CertScore:   numeric.Round(certScore, 2),
		CSI:         numeric.Round(csi, 2),
		Credibility: cred,
	}
}

// StatusFor buckets a CSI value.
func StatusFor(csi float64) model.Status {
	switch {
	case csi >= stableThreshold:
		return model.StatusStable
	case csi >= atRiskThreshold:
		return model.StatusAtRisk
	default:
		return model.StatusCritical
	}
}
