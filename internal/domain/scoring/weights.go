package scoring

import (
	"strings"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/internal/domain/numeric"
)

// DefaultCertType is assumed when a record carries no certificate type.
const DefaultCertType = "student_coordinator"

// FallbackWeight applies to certificate types with no outcomes and no base entry.
const FallbackWeight = 0.2

// baseWeights is the static weight table used when no outcomes were observed.
var baseWeights = map[string]float64{
	"professional":        1.0,
	"short_program":       0.7,
	"workshop":            0.4,
	"conference":          0.3,
	"student_coordinator": 0.2,
}

// WeightTable maps a normalized certificate type to its placement success rate.
type WeightTable map[string]float64

// NormalizeCertType trims and lowercases a certificate type, mapping blanks
// to DefaultCertType.
func NormalizeCertType(certType string) string {
	key := strings.ToLower(strings.TrimSpace(certType))
	if key == "" {
		return DefaultCertType
	}
	return key
}

// LearnWeights derives the success rate of every certificate type seen in
// outcomes. The result depends only on its input; calling it twice with the
// same slice yields equal tables.
func LearnWeights(outcomes []model.OutcomeRecord) WeightTable {
	type tally struct{ yes, no int }
	stats := make(map[string]*tally)
	for _, o := range outcomes {
		key := NormalizeCertType(o.CertType)
		t, ok := stats[key]
		if !ok {
			t = &tally{}
			stats[key] = t
		}
		if strings.ToLower(strings.TrimSpace(o.Placed)) == "yes" {
			t.yes++
		} else {
			t.no++
		}
	}

	table := make(WeightTable, len(stats))
	for key, t := range stats {
		total := t.yes + t.no
		if total == 0 {
			table[key] = FallbackWeight
			continue
		}
		table[key] = numeric.Round(float64(t.yes)/float64(total), 2)
	}
	return table
}

// Weight resolves certType against the adaptive table first, then the static
// base table, then FallbackWeight. A nil table behaves as an empty one.
func (t WeightTable) Weight(certType string) float64 {
	key := NormalizeCertType(certType)
	if w, ok := t[key]; ok {
		return w
	}
	return BaseWeight(key)
}

// BaseWeight returns the static weight for certType.
func BaseWeight(certType string) float64 {
	if w, ok := baseWeights[NormalizeCertType(certType)]; ok {
		return w
	}
	return FallbackWeight
}
