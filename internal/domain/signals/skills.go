package signals

import (
	"fmt"
	"strings"

	"github.com/okian/empiria/internal/domain/numeric"
)

// FallbackSkill is the only skill of an unrecognized branch.
const FallbackSkill = "Soft Skills"

const strongCertScore = 4.0

var branchSkills = map[string][]string{
	"cse":   {"Python", "DSA", "SQL", "Git", "Internship"},
	"aiml":  {"Python", "ML", "DL", "SQL", "Internship"},
	"ece":   {"Embedded C", "IoT", "MATLAB"},
	"mech":  {"SolidWorks", "Manufacturing"},
	"civil": {"AutoCAD", "ETABS"},
	"eee":   {"PLC", "SCADA"},
}

var skillWeights = map[string]float64{
	"Python":     1.2,
	"DSA":        1.4,
	"ML":         1.3,
	"DL":         1.2,
	"SQL":        1.1,
	"Internship": 1.5,
	"Git":        1.0,
	"Embedded C": 1.2,
	"IoT":        1.1,
}

// SkillProfile describes a student's skill position for their branch.
type SkillProfile struct {
	Skills        []string
	Dominant      string
	Weak          []string
	SuccessPath   string
	Employability float64
}

// BranchSkills returns a copy of the ordered skill list for branch.
func BranchSkills(branch string) []string {
	skills, ok := branchSkills[branchKey(branch)]
	if !ok {
		return []string{FallbackSkill}
	}
	return append([]string(nil), skills...)
}

// SkillWeight is the employability multiplier of a skill, 1.0 when unlisted.
func SkillWeight(skill string) float64 {
	if w, ok := skillWeights[skill]; ok {
		return w
	}
	return 1.0
}

// AnalyzeSkills derives the dominant skill, the weak tail and employability.
// A strong certificate is taken to cover the first two skills.
func AnalyzeSkills(branch string, certScore, csi float64) SkillProfile {
	skills := BranchSkills(branch)
	dominant := skills[0]

	weak := skills
	if certScore > strongCertScore {
		weak = []string{}
		if len(skills) > 2 {
			weak = append(weak, skills[2:]...)
		}
	}

	return SkillProfile{
		Skills:        skills,
		Dominant:      dominant,
		Weak:          weak,
		SuccessPath:   fmt.Sprintf("Can survive and grow via %s-centric roles", dominant),
		Employability: numeric.Round(numeric.Clamp(csi*SkillWeight(dominant), 0, 100), 2),
	}
}

// PlacementProbability blends CSI and employability evenly into [0,100].
func PlacementProbability(csi, employability float64) float64 {
	return numeric.Round(numeric.Clamp(csi*0.5+employability*0.5, 0, 100), 2)
}

func branchKey(branch string) string {
	return strings.ToLower(strings.TrimSpace(branch))
}
