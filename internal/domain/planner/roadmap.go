// Package planner turns risk signals into actionable recommendations: the
// branch roadmap, the daily recovery plan, the company projection and the
// income timeline.
package planner

import (
	"strings"

	"github.com/okian/empiria/internal/domain/scoring"
)

// Roadmap tasks inserted in front of the branch roadmap.
const (
	TaskAttendanceMentoring = "Attendance mentoring"
	TaskCoreRevision        = "Core subject revision"
	TaskCertification       = "Mandatory professional certification"
)

var branchRoadmaps = map[string][]string{
	"cse":   {"Python", "DSA", "SQL", "Git", "Internship"},
	"aiml":  {"Python", "ML", "DL", "SQL", "Internship"},
	"ece":   {"Embedded C", "IoT", "MATLAB"},
	"mech":  {"SolidWorks", "Manufacturing"},
	"civil": {"AutoCAD", "ETABS", "STAAD"},
	"eee":   {"PLC", "SCADA", "MATLAB"},
}

var fallbackRoadmap = []string{"Soft Skills", "Internship"}

// Roadmap builds the ordered task list for a branch. Each remedial task is
// pushed to the front, so the last matching reason ends up first.
func Roadmap(branch string, reasons []string) []string {
	base, ok := branchRoadmaps[strings.ToLower(strings.TrimSpace(branch))]
	if !ok {
		base = fallbackRoadmap
	}
	roadmap := make([]string, 0, len(base)+3)
	roadmap = append(roadmap, base...)

	for _, step := range []struct{ reason, task string }{
		{scoring.ReasonLowAttendance, TaskAttendanceMentoring},
		{scoring.ReasonLowMarks, TaskCoreRevision},
		{scoring.ReasonLowCerts, TaskCertification},
	} {
		if scoring.HasReason(reasons, step.reason) {
			roadmap = append([]string{step.task}, roadmap...)
		}
	}
	return roadmap
}
