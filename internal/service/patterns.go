package service

import (
	"fmt"

	"github.com/neuroquant-report-server/internal/domain"
)

// patternInputs is the finished evidence the pattern rules run on. All
// members are optional: a nil pointer means the signal was not available in
// this observation.
type patternInputs struct {
	// Effective z-scores (inversion-adjusted, more negative is worse).
	HippocampusZ *float64
	AmygdalaZ    *float64
	CaudateZ     *float64
	WhiteMatterZ *float64

	// InferiorLateralVentricleZ is the raw (un-inverted) z-score: positive
	// means the temporal horns are enlarged.
	InferiorLateralVentricleZ *float64

	BPFZ *float64
	HOC  *float64
}

// patternRule is one ordered entry of the pattern decision table.
type patternRule struct {
	name   string
	detect func(in patternInputs) *domain.Pattern
}

// patternRules is evaluated in fixed order. Rules are not mutually
// exclusive; only the normal-aging fallback is suppressed by earlier hits.
var patternRules = []patternRule{
	{name: "alzheimer", detect: detectADPattern},
	{name: "ftd", detect: detectFTDPattern},
	{name: "vascular", detect: detectVascularPattern},
	{name: "early_mci", detect: detectEarlyMCIPattern},
}

// detectPatterns runs the ordered rule table and appends the normal-aging
// fallback when nothing fired.
func detectPatterns(in patternInputs) []domain.Pattern {
	patterns := make([]domain.Pattern, 0, 2)
	for _, rule := range patternRules {
		if p := rule.detect(in); p != nil {
			patterns = append(patterns, *p)
		}
	}
	if len(patterns) == 0 {
		patterns = append(patterns, normalAgingPattern(in))
	}
	return patterns
}

// detectADPattern accumulates points for the Alzheimer-type atrophy
// signature. The hippocampal criterion gates the rule; the pattern is only
// emitted at three points or more.
func detectADPattern(in patternInputs) *domain.Pattern {
	if in.HippocampusZ == nil || *in.HippocampusZ >= -1.5 {
		return nil
	}

	points := 0
	indicators := make([]string, 0, 3)

	if *in.HippocampusZ < -2.0 {
		points += 3
		indicators = append(indicators, fmt.Sprintf("marked hippocampal volume loss (z=%.2f)", *in.HippocampusZ))
	} else {
		points += 2
		indicators = append(indicators, fmt.Sprintf("hippocampal volume loss (z=%.2f)", *in.HippocampusZ))
	}

	if in.HOC != nil && *in.HOC < 0.75 {
		points += 2
		indicators = append(indicators, fmt.Sprintf("reduced hippocampal occupancy (HOC %.2f)", *in.HOC))
	}

	if in.AmygdalaZ != nil && *in.AmygdalaZ < -1.5 {
		points++
		indicators = append(indicators, fmt.Sprintf("amygdala volume loss (z=%.2f)", *in.AmygdalaZ))
	}

	if points < 3 {
		return nil
	}

	confidence := domain.CONFIDENCE_MODERATE
	if points >= 5 {
		confidence = domain.CONFIDENCE_HIGH
	}

	return &domain.Pattern{
		Name:           "Alzheimer-type atrophy pattern",
		Confidence:     confidence,
		Indicators:     indicators,
		Recommendation: "Volumetric distribution consistent with medial temporal predominant atrophy; consider memory-clinic workup and biomarker correlation.",
	}
}

// detectFTDPattern flags disproportionate caudate loss with relative
// hippocampal sparing.
func detectFTDPattern(in patternInputs) *domain.Pattern {
	if in.CaudateZ == nil || *in.CaudateZ >= -2.0 {
		return nil
	}
	if in.HippocampusZ != nil && *in.HippocampusZ <= *in.CaudateZ+0.5 {
		return nil
	}

	indicators := []string{fmt.Sprintf("disproportionate caudate volume loss (z=%.2f)", *in.CaudateZ)}
	if in.HippocampusZ != nil {
		indicators = append(indicators, fmt.Sprintf("relative hippocampal sparing (z=%.2f)", *in.HippocampusZ))
	}

	return &domain.Pattern{
		Name:           "Frontotemporal-leaning atrophy pattern",
		Confidence:     domain.CONFIDENCE_LOW_MODERATE,
		Indicators:     indicators,
		Recommendation: "Subcortical-predominant volume loss with hippocampal sparing; frontal/anterior temporal assessment recommended if clinically indicated.",
	}
}

// detectVascularPattern flags marked white-matter volume loss.
func detectVascularPattern(in patternInputs) *domain.Pattern {
	if in.WhiteMatterZ == nil || *in.WhiteMatterZ >= -2.0 {
		return nil
	}

	return &domain.Pattern{
		Name:       "Vascular-type white matter involvement",
		Confidence: domain.CONFIDENCE_MODERATE,
		Indicators: []string{
			fmt.Sprintf("marked cerebral white matter volume loss (z=%.2f)", *in.WhiteMatterZ),
		},
		Recommendation: "White-matter predominant volume loss; FLAIR review for small-vessel disease burden suggested.",
	}
}

// detectEarlyMCIPattern flags reduced hippocampal occupancy before overt
// hippocampal volume loss. Confidence escalates as HOC drops and is raised
// one level when the temporal horns are already enlarging.
func detectEarlyMCIPattern(in patternInputs) *domain.Pattern {
	if in.HOC == nil || *in.HOC >= 0.80 {
		return nil
	}
	if in.HippocampusZ != nil && *in.HippocampusZ < -1.5 {
		return nil
	}

	confidence := domain.CONFIDENCE_LOW
	switch {
	case *in.HOC < 0.70:
		confidence = domain.CONFIDENCE_MODERATE
	case *in.HOC < 0.75:
		confidence = domain.CONFIDENCE_LOW_MODERATE
	}

	indicators := []string{fmt.Sprintf("reduced hippocampal occupancy (HOC %.2f)", *in.HOC)}
	if in.InferiorLateralVentricleZ != nil && *in.InferiorLateralVentricleZ > 0.5 {
		confidence = confidence.Raise()
		indicators = append(indicators, fmt.Sprintf("temporal horn enlargement (z=%.2f)", *in.InferiorLateralVentricleZ))
	}

	return &domain.Pattern{
		Name:           "Early medial temporal change (MCI-type)",
		Confidence:     confidence,
		Indicators:     indicators,
		Recommendation: "Occupancy reduction precedes overt hippocampal volume loss; follow-up volumetry in 12 months may clarify trajectory.",
	}
}

// normalAgingPattern is the fallback emitted when no rule fired.
func normalAgingPattern(in patternInputs) domain.Pattern {
	strongEvidence := (in.BPFZ != nil && *in.BPFZ >= -1.5) &&
		(in.HippocampusZ != nil && *in.HippocampusZ >= -1.5) &&
		(in.HOC == nil || *in.HOC >= 0.80)

	if strongEvidence {
		return domain.Pattern{
			Name:           "Normal aging pattern",
			Confidence:     domain.CONFIDENCE_HIGH,
			Indicators:     []string{"all key volumetric measures within expected range for age and sex"},
			Recommendation: "Volumetric findings are consistent with normal aging.",
		}
	}

	return domain.Pattern{
		Name:           "Normal aging pattern",
		Confidence:     domain.CONFIDENCE_MODERATE,
		Indicators:     []string{"no specific atrophy pattern identified"},
		Recommendation: "No specific atrophy pattern identified; some measures were unavailable or borderline, interpret with the individual z-scores.",
	}
}
