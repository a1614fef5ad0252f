// Package loadtest drives a running service through the outcome feedback
// endpoint and checks that every accepted outcome lands in the store.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumOutcomes  int           // Unique outcomes to submit
	DuplicatePct int           // Share of submissions that resend an earlier feedback id, 0..100
	Workers      int           // Concurrent submitters
	Timeout      time.Duration // Per-request timeout
	SettleWait   time.Duration // How long to wait for the store to catch up
	Seed         uint64        // Generator seed
}

// Outcome is the body posted to /outcome_feedback.
type Outcome struct {
	FeedbackID string `json:"feedback_id"`
	ID         string `json:"id"`
	CertType   string `json:"cert_type"`
	Placed     string `json:"placed"`
	Salary     string `json:"salary"`
	Days       string `json:"days"`
}

// AckResponse represents the response from outcome submission.
type AckResponse struct {
	Status     string `json:"status"`
	FeedbackID string `json:"feedback_id"`
	Duplicate  bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	Submitted    int
	Accepted     int
	Duplicate    int
	Backpressure int
	Failed       int

	OutcomesBefore int
	OutcomesAfter  int

	Duration time.Duration
}

// Throughput is submissions per second over the run.
func (s Stats) Throughput() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
