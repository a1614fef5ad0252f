package planner

import "github.com/okian/empiria/internal/domain/model"

const employabilityBar = 80.0

// CompanyMap projects target companies, a salary band and skill blockers for
// a dominant skill. The salary band steps up once employability reaches 80.
func CompanyMap(dominantSkill string, employability float64) model.CompanyPath {
	strong := employability >= employabilityBar
	switch dominantSkill {
	case "Python":
		p := model.CompanyPath{
			TargetCompanies: []string{"TCS", "Accenture", "Infosys", "Zoho"},
			ExpectedSalary:  "₹4–7 LPA",
			SkillBlockers:   []string{"DSA", "SQL", "Projects"},
		}
		if strong {
			p.ExpectedSalary = "₹7–12 LPA"
			p.SkillBlockers = []string{"System Design"}
		}
		return p
	case "ML", "DL":
		p := model.CompanyPath{
			TargetCompanies: []string{"Fractal", "Tiger Analytics", "Mu Sigma"},
			ExpectedSalary:  "₹6–10 LPA",
			SkillBlockers:   []string{"Model deployment", "End-to-end projects"},
		}
		if strong {
			p.ExpectedSalary = "₹10–18 LPA"
		}
		return p
	default:
		return model.CompanyPath{
			TargetCompanies: []string{"Wipro", "HCL"},
			ExpectedSalary:  "₹2–4 LPA",
			SkillBlockers:   []string{"Core skill depth"},
		}
	}
}

// IncomeTimeline buckets an intervention priority into a time-to-income estimate.
func IncomeTimeline(priority float64) string {
	switch {
	case priority < 10:
		return "2–3 months"
	case priority < 15:
		return "4–6 months"
	default:
		return "6–9 months"
	}
}
