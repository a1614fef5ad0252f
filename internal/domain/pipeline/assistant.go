package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/empiria/internal/domain/model"
)

// AssistantHelp is the reply to a question with no recognized keyword.
const AssistantHelp = "Ask about: at risk, critical, skills, health"

// Feeds is the snapshot the assistant answers from.
type Feeds struct {
	Students []model.StudentRecord
	Outcomes []model.OutcomeRecord
	Skills   []model.SkillDemand
}

// Assistant dispatches a free-text question on its first matching keyword,
// checked in the order "at risk", "critical", "skills", "health".
func Assistant(question string, feeds Feeds) model.AssistantReply {
	switch {
	case containsFold(question, "at risk"):
		return model.AssistantReply{Reply: namesBelow(feeds, 80)}
	case containsFold(question, "critical"):
		return model.AssistantReply{Reply: namesBelow(feeds, 60)}
	case containsFold(question, "skills"):
		skills := feeds.Skills
		if skills == nil {
			skills = []model.SkillDemand{}
		}
		return model.AssistantReply{Reply: skills}
	case containsFold(question, "health"):
		score := KPISummary(feeds.Students, feeds.Outcomes).HealthScore
		return model.AssistantReply{Reply: fmt.Sprintf("Institution Health Score is %s", formatScore(score))}
	default:
		return model.AssistantReply{Reply: AssistantHelp}
	}
}

func namesBelow(feeds Feeds, limit float64) []string {
	names := make([]string, 0)
	for i, csi := range csiValues(feeds.Students, feeds.Outcomes) {
		if csi < limit {
			names = append(names, feeds.Students[i].Name)
		}
	}
	return names
}

// formatScore prints whole scores with one decimal, matching "80.0".
func formatScore(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}
