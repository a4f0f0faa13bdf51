package service

import "github.com/neuroquant-report-server/internal/domain"

// riskInputs carries the finished evidence the risk cascade runs on.
type riskInputs struct {
	// Effective z-scores of every scored region.
	RegionZ map[string]float64

	HippocampusZ *float64
	BPFZ         *float64
	HOC          *float64
}

// severityCounts buckets regions by effective z-score. Buckets are mutually
// exclusive: a region contributes only to the most severe bucket it
// qualifies for.
type severityCounts struct {
	Critical int // z < -2.5
	Moderate int // z < -2.0
	Mild     int // z < -1.5
}

func countSeverities(regionZ map[string]float64) severityCounts {
	var c severityCounts
	for _, z := range regionZ {
		switch {
		case z < -2.5:
			c.Critical++
		case z < -2.0:
			c.Moderate++
		case z < -1.5:
			c.Mild++
		}
	}
	return c
}

// riskRule is one ordered entry of the risk cascade.
type riskRule struct {
	level domain.RiskLevel
	match func(c severityCounts, in riskInputs) bool
}

func zBelow(z *float64, threshold float64) bool {
	return z != nil && *z < threshold
}

func hocBelow(hoc *float64, threshold float64) bool {
	return hoc != nil && *hoc < threshold
}

// riskCascade is evaluated top-down; the first matching rule wins.
var riskCascade = []riskRule{
	{
		level: domain.RISK_HIGH,
		match: func(c severityCounts, in riskInputs) bool {
			return c.Critical >= 2 || zBelow(in.HippocampusZ, -2.5) || hocBelow(in.HOC, 0.60)
		},
	},
	{
		level: domain.RISK_MODERATE,
		match: func(c severityCounts, in riskInputs) bool {
			return c.Moderate >= 1 || c.Critical >= 1 || zBelow(in.HippocampusZ, -2.0) || hocBelow(in.HOC, 0.70)
		},
	},
	{
		level: domain.RISK_MILD,
		match: func(c severityCounts, in riskInputs) bool {
			return c.Mild >= 2 || zBelow(in.HippocampusZ, -1.5) || zBelow(in.BPFZ, -1.5) || hocBelow(in.HOC, 0.75)
		},
	},
	{
		level: domain.RISK_LOW_NORMAL,
		match: func(c severityCounts, in riskInputs) bool {
			return c.Mild >= 1 || zBelow(in.HippocampusZ, -1.0) || hocBelow(in.HOC, 0.80)
		},
	},
}

// aggregateRisk derives the ordinal risk verdict from the mutually exclusive
// severity counts and the biomarker evidence. Falls through to Normal when no
// cascade rule matches.
func aggregateRisk(in riskInputs) domain.RiskLevel {
	counts := countSeverities(in.RegionZ)
	for _, rule := range riskCascade {
		if rule.match(counts, in) {
			return rule.level
		}
	}
	return domain.RISK_NORMAL
}
