package student

import (
	"math"
	"strconv"
	"strings"
)

// Component weights. Fixed at compile time on purpose: the formula is meant
// to stay inspectable and explainable, not tuned at runtime.
const (
	weightAcademic   = 0.30
	weightSocio      = 0.30
	weightMotivation = 0.20
	weightBehavior   = 0.20

	// incomeCeiling is the parent income (per month) at which financial need
	// bottoms out and financial stability tops out.
	incomeCeiling = 20000.0

	lowRiskMin    = 70.0
	mediumRiskMin = 45.0
)

// Per-field fallbacks applied when a value is missing or unparsable.
const (
	defaultAcademic     = 0.0
	defaultParentIncome = 0.0
	defaultFamilySize   = 1
	defaultMotivation   = 3.0
	defaultBehavior     = 2.0
)

const noConcernsReason = "No major concerns found"

// ComputeScore maps raw attributes to a deservingness/retention score in
// [0,100], a risk bucket and a human-readable reason. It is a pure function:
// identical input always yields an identical result, and malformed input
// degrades to defaults instead of erroring.
func ComputeScore(attrs Attributes) ScoreResult {
	academic := parseFloat(attrs.Academic, defaultAcademic)
	parentIncome := parseFloat(attrs.ParentIncome, defaultParentIncome)
	familySize := parseInt(attrs.FamilySize, defaultFamilySize)
	motivation := parseFloat(attrs.Motivation, defaultMotivation)
	behavior := parseFloat(attrs.Behavior, defaultBehavior)

	// Socio-economic sub-metrics: lower income and larger families raise
	// need; higher income and smaller families raise stability.
	incomeCap := math.Max(parentIncome, 1)
	needScore := clamp(100-(incomeCap/incomeCeiling)*100, 0, 100)
	needScore = math.Min(100, needScore+float64(familySize-1)*5)
	stabilityScore := clamp((incomeCap/incomeCeiling)*100, 0, 100)
	stabilityScore = math.Max(0, stabilityScore-float64(familySize-1)*3)

	academicComp := clamp(academic, 0, 100)
	socioComp := needScore*0.6 + stabilityScore*0.4
	motivationComp := clamp((motivation/5)*100, 0, 100)
	behaviorComp := clamp((behavior/3)*100, 0, 100)

	score := academicComp*weightAcademic +
		socioComp*weightSocio +
		motivationComp*weightMotivation +
		behaviorComp*weightBehavior

	// Ordered, independently evaluated flags; all that apply are reported.
	reasons := make([]string, 0, 5)
	if academicComp < 50 {
		reasons = append(reasons, "Weak academic performance")
	}
	if motivationComp < 50 {
		reasons = append(reasons, "Low motivation")
	}
	if behaviorComp < 50 {
		reasons = append(reasons, "Behavior concerns")
	}
	if stabilityScore < 30 {
		reasons = append(reasons, "Financial instability")
	}
	if needScore > 70 && stabilityScore < 40 {
		reasons = append(reasons, "High financial need (deserving) but unstable resources")
	}
	reason := noConcernsReason
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " + ")
	}

	return ScoreResult{
		Score:  round2(score),
		Risk:   riskBucket(score),
		Reason: reason,
	}
}

// riskBucket thresholds the raw (unrounded) score. First match wins.
func riskBucket(score float64) string {
	switch {
	case score >= lowRiskMin:
		return RiskLow
	case score >= mediumRiskMin:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
