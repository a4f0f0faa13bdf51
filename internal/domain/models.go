package domain

import (
	"strings"
	"time"
)

// AgeAnchors are the reference ages at which region means are tabulated.
// Expected means between anchors are linearly interpolated; ages outside the
// range clamp to the nearest anchor.
var AgeAnchors = [4]float64{20, 40, 60, 80}

// RegionProfile is the immutable normative profile for one anatomical region.
type RegionProfile struct {
	// Key is the canonical region key, e.g. "Hippocampus" or "Lateral-Ventricle".
	Key          string `json:"key"`
	ClinicalName string `json:"clinical_name"`
	Description  string `json:"description,omitempty"`

	// Means holds the expected volume in mm^3 per sex at each age anchor.
	Means map[Sex][4]float64 `json:"means"`
	// SD holds the population standard deviation per sex. Must be positive.
	SD map[Sex]float64 `json:"sd"`

	// InvertZScore is true for CSF and ventricular spaces, where a larger
	// volume is the pathological direction.
	InvertZScore bool                 `json:"invert_zscore"`
	Significance ClinicalSignificance `json:"clinical_significance"`

	// ICVBeta is the head-size regression coefficient used for residual
	// correction. Regions without a tabulated coefficient pass through
	// normalization unchanged.
	ICVBeta *float64 `json:"icv_beta,omitempty"`

	// Optional per-region z-score thresholds from MCI/AD cohort studies.
	MCIThreshold *float64 `json:"mci_threshold,omitempty"`
	ADThreshold  *float64 `json:"ad_threshold,omitempty"`
}

// MeanAt returns the tabulated means for the given sex.
func (rp *RegionProfile) MeanAt(sex Sex) ([4]float64, bool) {
	m, ok := rp.Means[sex]
	return m, ok
}

// IsVentricular reports whether the region is counted on the CSF side of the
// parenchymal/ventricular partition used by the ICV estimator.
func (rp *RegionProfile) IsVentricular() bool {
	return containsFold(rp.Key, "ventricle")
}

// PatientContext carries the demographic inputs of one analysis run.
// Immutable for the duration of the run.
type PatientContext struct {
	// Age in years. Values outside the interpolation range are clamped,
	// never rejected.
	Age float64 `json:"age"`
	Sex Sex     `json:"sex"`
}

// Validate checks the demographic inputs.
func (pc PatientContext) Validate() error {
	if !pc.Sex.IsValid() {
		return ErrInvalidSex
	}
	if pc.Age < 0 {
		return NewValidationError("age", "age must be non-negative", pc.Age)
	}
	return nil
}

// VolumeObservation maps a raw region label to its voxel count in a
// 1 mm^3-isotropic conformed frame, so counts are directly volumes in mm^3.
// Produced by the segmentation collaborator and treated as read-only.
type VolumeObservation map[string]int64

// Validate rejects structurally unusable observations. An empty or nil
// observation is the only fatal input condition of the pipeline.
func (vo VolumeObservation) Validate() error {
	if len(vo) == 0 {
		return ErrMissingVolumes
	}
	for label, voxels := range vo {
		if voxels < 0 {
			return NewValidationError("volumes", "voxel count must be non-negative", label)
		}
	}
	return nil
}

// ZScoreResult is the per-region normative comparison result.
type ZScoreResult struct {
	Region       string  `json:"region"`
	ClinicalName string  `json:"clinical_name"`
	RawVolume    int64   `json:"raw_volume"`
	// AdjustedVolume is the volume after ICV residual correction, floored at 0.
	AdjustedVolume float64 `json:"adjusted_volume"`
	ExpectedMean   float64 `json:"expected_mean"`

	ZScore float64 `json:"zscore"`
	// EffectiveZScore is the z-score sign-flipped for inverted regions so
	// that more negative always means worse.
	EffectiveZScore float64              `json:"effective_zscore"`
	Percentile      int                  `json:"percentile"`
	Interpretation  Interpretation       `json:"interpretation"`
	Significance    ClinicalSignificance `json:"clinical_significance"`
}

// BPFResult is the Brain Parenchymal Fraction biomarker.
type BPFResult struct {
	Value          float64        `json:"value"`
	Expected       float64        `json:"expected"`
	ZScore         float64        `json:"zscore"`
	Percentile     int            `json:"percentile"`
	Interpretation Interpretation `json:"interpretation"`
}

// HOCResult is the Hippocampal Occupancy Score biomarker. Value is nil when
// the hippocampus volume is zero: a signaled degenerate case, not an error.
type HOCResult struct {
	Value          *float64       `json:"value"`
	Expected       float64        `json:"expected,omitempty"`
	ZScore         *float64       `json:"zscore,omitempty"`
	Percentile     *int           `json:"percentile,omitempty"`
	Interpretation string         `json:"interpretation"`
	ConversionRisk ConversionRisk `json:"conversion_risk,omitempty"`
	// ConversionNote is an illustrative 3-year MCI-to-AD conversion rate
	// for the band; population figures, not a patient prediction.
	ConversionNote string `json:"conversion_note,omitempty"`
}

// MTAScore is the medial temporal atrophy scale equivalent (0-4, step 0.5).
type MTAScore struct {
	Score        float64 `json:"score"`
	Label        string  `json:"label"`
	AgeThreshold float64 `json:"age_threshold"`
	Abnormal     bool    `json:"is_abnormal"`
}

// GCAScore is the global cortical atrophy scale equivalent (0-3).
type GCAScore struct {
	Score        int    `json:"score"`
	Label        string `json:"label"`
	AgeThreshold int    `json:"age_threshold"`
	Abnormal     bool   `json:"is_abnormal"`
}

// KoedamScore is the posterior atrophy scale equivalent (0-3). Without an
// independent posterior-region signal it is always an estimate derived from
// the cortical proxy and carries a caveat instead of an abnormality flag.
type KoedamScore struct {
	Score  int    `json:"score"`
	Label  string `json:"label"`
	Caveat string `json:"caveat"`
}

// EvansIndexScore is the ventricular enlargement index (continuous).
type EvansIndexScore struct {
	Value    float64 `json:"value"`
	Band     string  `json:"band"`
	Abnormal bool    `json:"is_abnormal"`
}

// StandardizedScores groups the four visual-rating-scale equivalents.
// A nil member means the scale could not be derived from the observation.
type StandardizedScores struct {
	MTA    *MTAScore        `json:"mta,omitempty"`
	GCA    *GCAScore        `json:"gca,omitempty"`
	Koedam *KoedamScore     `json:"koedam,omitempty"`
	Evans  *EvansIndexScore `json:"evans_index,omitempty"`
}

// Pattern is one rule-inferred clinical atrophy pattern.
type Pattern struct {
	Name           string            `json:"name"`
	Confidence     PatternConfidence `json:"confidence"`
	Indicators     []string          `json:"indicators"`
	Recommendation string            `json:"recommendation"`
}

// Finding is a single severity-graded line of the report, clinical or
// data-quality. Findings are sorted danger, warning, info.
type Finding struct {
	Severity FindingSeverity `json:"severity"`
	Text     string          `json:"text"`
	Type     string          `json:"type"`
}

// QualityFlags summarizes the validator's view of the result.
type QualityFlags struct {
	OverallQuality string   `json:"overall_quality"`
	PossibleIssues []string `json:"possible_issues"`
}

// ValidationResult is the advisory output of the post-hoc plausibility
// checks. Warnings never alter the computed numbers.
type ValidationResult struct {
	IsValid           bool         `json:"is_valid"`
	Warnings          []Finding    `json:"warnings"`
	Flags             QualityFlags `json:"flags"`
	RecommendedAction string       `json:"recommended_action"`
}

// AnalysisReport is the aggregate result of one analysis invocation.
// Assembled once, never mutated afterwards.
type AnalysisReport struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Age float64 `json:"age"`
	Sex Sex     `json:"sex"`

	Regions map[string]ZScoreResult `json:"regions"`

	// TotalBrainVolume is the sum of non-ventricular raw volumes in mm^3.
	TotalBrainVolume int64 `json:"total_brain_volume"`
	EstimatedICV     int64 `json:"estimated_icv"`

	BPF *BPFResult `json:"bpf,omitempty"`
	HOC *HOCResult `json:"hoc,omitempty"`

	Scales   StandardizedScores `json:"standardized_scores"`
	Patterns []Pattern          `json:"patterns"`

	Risk            RiskLevel `json:"risk"`
	RiskDescription string    `json:"risk_description"`

	Findings   []Finding        `json:"findings"`
	Validation ValidationResult `json:"validation"`
}

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
