// Package score derives the 0-100 risk score for a blacklist entry.
//
// The heuristic is deliberately a static ordered rule list, not a
// classifier: downstream systems compare scores across deployments, so the
// result must stay bit-for-bit reproducible.
package score

import "strings"

const (
	base         = 50
	highRiskAdd  = 30
	mediumAdd    = 15
	documentsAdd = 10
	faceImageAdd = 10
	maxScore     = 100
)

// keywordRule adds delta when any keyword appears in the reason. Rules are
// evaluated in order, first match wins: a reason containing both a high- and
// a medium-risk keyword scores the high-risk delta only.
type keywordRule struct {
	keywords []string
	delta    int
}

var reasonRules = []keywordRule{
	{keywords: []string{"fraud", "theft", "violence", "criminal", "scam"}, delta: highRiskAdd},
	{keywords: []string{"dispute", "complaint", "unpaid", "breach"}, delta: mediumAdd},
}

// Compute maps a reason text and the evidence flags to a risk score.
// Matching is a case-insensitive substring scan; evidence contributions are
// additive; the result is clamped at 100.
func Compute(reason string, hasDocuments, hasFaceImage bool) int {
	result := base + reasonDelta(reason)
	if hasDocuments {
		result += documentsAdd
	}
	if hasFaceImage {
		result += faceImageAdd
	}
	if result > maxScore {
		result = maxScore
	}
	return result
}

func reasonDelta(reason string) int {
	lowered := strings.ToLower(reason)
	for _, rule := range reasonRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.delta
			}
		}
	}
	return 0
}
