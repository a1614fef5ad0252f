// Package scoring computes the composite success index (CSI) from a student
// record, including certificate credibility and the adaptive weight table
// learned from placement outcomes.
package scoring

import "strings"

// Credibility tags.
const (
	TagFake = "FAKE / ZERO VALUE"
	TagLow  = "LOW CREDIBILITY"
	TagHigh = "HIGH CREDIBILITY"
)

// Credibility weights.
const (
	fakeWeight    = -0.4
	lowWeight     = 0.4
	premiumWeight = 1.0
)

var (
	fakeSources = map[string]struct{}{
		"randomsite": {}, "cheapcert": {}, "telegram": {}, "freepdf": {},
	}
	premiumSources = map[string]struct{}{
		"google": {}, "microsoft": {}, "aws": {}, "ibm": {}, "nptel": {}, "coursera": {},
	}
)

// Credibility is the trust multiplier derived from a certificate's source.
type Credibility struct {
	Weight float64
	Tag    string
}

// ResolveCredibility classifies certSource into a trust multiplier. certType
// is accepted for symmetry with the weight lookup and does not affect the result.
func ResolveCredibility(_ string, certSource string) Credibility {
	src := strings.ToLower(strings.TrimSpace(certSource))
	if _, ok := fakeSources[src]; ok {
		return Credibility{Weight: fakeWeight, Tag: TagFake}
	}
	if _, ok := premiumSources[src]; ok {
		return Credibility{Weight: premiumWeight, Tag: TagHigh}
	}
	return Credibility{Weight: lowWeight, Tag: TagLow}
}
