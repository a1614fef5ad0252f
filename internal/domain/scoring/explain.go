package scoring

// Explanation tags. Planners match on these literals.
const (
	ReasonLowAttendance = "Low attendance"
	ReasonLowMarks      = "Low internal marks"
	ReasonLowCerts      = "Low quality certifications"
	ReasonHealthy       = "Healthy performance"
)

const (
	attendanceFloor = 75
	marksFloor      = 65
	certScoreFloor  = 4.0
)

// Explain lists the reasons behind a CSI, in attendance, marks, certification order.
func Explain(att, avg int, certScore float64) []string {
	reasons := make([]string, 0, 3)
	if att < attendanceFloor {
		reasons = append(reasons, ReasonLowAttendance)
	}
	if avg < marksFloor {
		reasons = append(reasons, ReasonLowMarks)
	}
	if certScore < certScoreFloor {
		reasons = append(reasons, ReasonLowCerts)
	}
	if len(reasons) == 0 {
		return []string{ReasonHealthy}
	}
	return reasons
}

// HasReason reports whether reason appears in reasons.
func HasReason(reasons []string, reason string) bool {
	for _, r := range reasons {
		if r == reason {
			return true
		}
	}
	return false
}
