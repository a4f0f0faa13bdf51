// Package domain contains the core entities and types for normative brain
// volumetry: per-region z-scoring against age/sex reference tables, composite
// biomarkers (BPF, HOC), standardized visual-rating-scale equivalents and
// rule-based atrophy-pattern recognition.
//
// The engine performs statistical comparison against reference populations
// only; it never asserts a diagnosis.
package domain

// Sex is the patient sex token used for reference-table lookups.
type Sex string

const (
	MALE   Sex = "male"
	FEMALE Sex = "female"
)

// IsValid reports whether the sex token matches a reference-table column.
func (s Sex) IsValid() bool {
	switch s {
	case MALE, FEMALE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sex token.
func (s Sex) String() string {
	return string(s)
}

// Interpretation is the ordinal bucket a region or biomarker z-score falls
// into. Buckets are evaluated on the effective (inversion-adjusted) z-score
// with >= comparisons, so a boundary value belongs to the better bucket.
type Interpretation string

const (
	INTERP_NORMAL     Interpretation = "normal"
	INTERP_LOW_NORMAL Interpretation = "low-normal"
	INTERP_MILD       Interpretation = "mild"
	INTERP_MODERATE   Interpretation = "moderate"
	INTERP_SEVERE     Interpretation = "severe"
)

// IsValid validates the interpretation bucket.
func (i Interpretation) IsValid() bool {
	switch i {
	case INTERP_NORMAL, INTERP_LOW_NORMAL, INTERP_MILD, INTERP_MODERATE, INTERP_SEVERE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the interpretation bucket.
func (i Interpretation) String() string {
	return string(i)
}

// ClinicalSignificance ranks how much weight a region carries in the
// downstream pattern and risk rules.
type ClinicalSignificance string

const (
	SIGNIFICANCE_LOW      ClinicalSignificance = "low"
	SIGNIFICANCE_MEDIUM   ClinicalSignificance = "medium"
	SIGNIFICANCE_HIGH     ClinicalSignificance = "high"
	SIGNIFICANCE_CRITICAL ClinicalSignificance = "critical"
)

// IsValid validates the clinical significance level.
func (cs ClinicalSignificance) IsValid() bool {
	switch cs {
	case SIGNIFICANCE_LOW, SIGNIFICANCE_MEDIUM, SIGNIFICANCE_HIGH, SIGNIFICANCE_CRITICAL:
		return true
	default:
		return false
	}
}

// String returns the string representation of the significance level.
func (cs ClinicalSignificance) String() string {
	return string(cs)
}

// RiskLevel is the ordinal atrophy-risk verdict produced by the risk
// aggregator. Levels are ordered Normal < LowNormal < Mild < Moderate < High.
type RiskLevel string

const (
	RISK_NORMAL     RiskLevel = "Normal"
	RISK_LOW_NORMAL RiskLevel = "Low-Normal"
	RISK_MILD       RiskLevel = "Mild"
	RISK_MODERATE   RiskLevel = "Moderate"
	RISK_HIGH       RiskLevel = "High"
)

// IsValid validates the risk level.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RISK_NORMAL, RISK_LOW_NORMAL, RISK_MILD, RISK_MODERATE, RISK_HIGH:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// Rank returns the ordinal position of the risk level, Normal being 0.
// Used to assert that the cascading verdict never de-escalates.
func (r RiskLevel) Rank() int {
	switch r {
	case RISK_NORMAL:
		return 0
	case RISK_LOW_NORMAL:
		return 1
	case RISK_MILD:
		return 2
	case RISK_MODERATE:
		return 3
	case RISK_HIGH:
		return 4
	default:
		return -1
	}
}

// Description returns the fixed descriptive string attached to each verdict.
func (r RiskLevel) Description() string {
	switch r {
	case RISK_NORMAL:
		return "Volumetric measures within expected range for age and sex"
	case RISK_LOW_NORMAL:
		return "Volumetric measures in the lower normal range; no clear atrophy signal"
	case RISK_MILD:
		return "Mild volumetric deviation from the age- and sex-matched reference population"
	case RISK_MODERATE:
		return "Moderate volumetric deviation; structured follow-up imaging may be warranted"
	case RISK_HIGH:
		return "Marked volumetric deviation across multiple measures; clinical correlation advised"
	default:
		return "Unknown risk level"
	}
}

// PatternConfidence grades how strongly a detected atrophy pattern is
// supported by the volumetric evidence.
type PatternConfidence string

const (
	CONFIDENCE_LOW          PatternConfidence = "Low"
	CONFIDENCE_LOW_MODERATE PatternConfidence = "Low-Moderate"
	CONFIDENCE_MODERATE     PatternConfidence = "Moderate"
	CONFIDENCE_HIGH         PatternConfidence = "High"
)

// IsValid validates the pattern confidence grade.
func (pc PatternConfidence) IsValid() bool {
	switch pc {
	case CONFIDENCE_LOW, CONFIDENCE_LOW_MODERATE, CONFIDENCE_MODERATE, CONFIDENCE_HIGH:
		return true
	default:
		return false
	}
}

// String returns the string representation of the confidence grade.
func (pc PatternConfidence) String() string {
	return string(pc)
}

// Raise returns the confidence grade one level up, saturating at High.
func (pc PatternConfidence) Raise() PatternConfidence {
	switch pc {
	case CONFIDENCE_LOW:
		return CONFIDENCE_LOW_MODERATE
	case CONFIDENCE_LOW_MODERATE:
		return CONFIDENCE_MODERATE
	case CONFIDENCE_MODERATE, CONFIDENCE_HIGH:
		return CONFIDENCE_HIGH
	default:
		return pc
	}
}

// ConversionRisk is the MCI-to-AD conversion-risk band attached to the
// hippocampal occupancy score.
type ConversionRisk string

const (
	CONVERSION_LOW       ConversionRisk = "Low"
	CONVERSION_MODERATE  ConversionRisk = "Moderate"
	CONVERSION_HIGH      ConversionRisk = "High"
	CONVERSION_VERY_HIGH ConversionRisk = "Very High"
)

// IsValid validates the conversion-risk band.
func (cr ConversionRisk) IsValid() bool {
	switch cr {
	case CONVERSION_LOW, CONVERSION_MODERATE, CONVERSION_HIGH, CONVERSION_VERY_HIGH:
		return true
	default:
		return false
	}
}

// String returns the string representation of the conversion-risk band.
func (cr ConversionRisk) String() string {
	return string(cr)
}

// FindingSeverity orders report findings for presentation: danger first,
// then warning, then info.
type FindingSeverity string

const (
	SEVERITY_INFO    FindingSeverity = "info"
	SEVERITY_WARNING FindingSeverity = "warning"
	SEVERITY_DANGER  FindingSeverity = "danger"
)

// IsValid validates the finding severity.
func (fs FindingSeverity) IsValid() bool {
	switch fs {
	case SEVERITY_INFO, SEVERITY_WARNING, SEVERITY_DANGER:
		return true
	default:
		return false
	}
}

// String returns the string representation of the finding severity.
func (fs FindingSeverity) String() string {
	return string(fs)
}

// Rank returns the sort weight of the severity; higher sorts first.
func (fs FindingSeverity) Rank() int {
	switch fs {
	case SEVERITY_DANGER:
		return 2
	case SEVERITY_WARNING:
		return 1
	case SEVERITY_INFO:
		return 0
	default:
		return -1
	}
}
