package service

import (
	"fmt"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

// computeBPF derives the Brain Parenchymal Fraction: the sum of
// non-ventricular raw volumes over the estimated ICV, compared against the
// age-decade norm. Interpretation buckets run on the raw BPF z-score.
func computeBPF(snapshot *reference.Snapshot, totalBrainVolume, icv int64, age float64) *domain.BPFResult {
	if icv <= 0 {
		return nil
	}

	value := float64(totalBrainVolume) / float64(icv)
	norm := snapshot.BPFNorm(age)
	zscore := round2((value - norm.Mean) / norm.SD)

	var interp domain.Interpretation
	switch {
	case zscore >= -1.0:
		interp = domain.INTERP_NORMAL
	case zscore >= -1.5:
		interp = domain.INTERP_MILD
	case zscore >= -2.0:
		interp = domain.INTERP_MODERATE
	default:
		interp = domain.INTERP_SEVERE
	}

	return &domain.BPFResult{
		Value:          value,
		Expected:       norm.Mean,
		ZScore:         zscore,
		Percentile:     percentileOf(zscore),
		Interpretation: interp,
	}
}

// hocBand maps a hippocampal occupancy value to its categorical band. The
// bands are value-based, not z-score-based, and each carries an MCI-to-AD
// conversion-risk label with an illustrative 3-year conversion rate.
func hocBand(value float64) (interpretation string, risk domain.ConversionRisk, note string) {
	switch {
	case value >= 0.80:
		return "normal hippocampal occupancy", domain.CONVERSION_LOW,
			"approx. 10% 3-year MCI-to-AD conversion in this band"
	case value >= 0.70:
		return "mildly reduced hippocampal occupancy", domain.CONVERSION_MODERATE,
			"approx. 25% 3-year MCI-to-AD conversion in this band"
	case value >= 0.60:
		return "moderately reduced hippocampal occupancy", domain.CONVERSION_HIGH,
			"approx. 45% 3-year MCI-to-AD conversion in this band"
	default:
		return "severely reduced hippocampal occupancy", domain.CONVERSION_VERY_HIGH,
			"approx. 65% 3-year MCI-to-AD conversion in this band"
	}
}

// computeHOC derives the Hippocampal Occupancy Score:
// hippocampus / (hippocampus + inferior lateral ventricle).
//
// A zero hippocampus volume makes HOC undefined; the result carries a nil
// value and an explanatory interpretation instead of failing.
func computeHOC(snapshot *reference.Snapshot, hippocampus, inferiorLateralVentricle int64, age float64) *domain.HOCResult {
	if hippocampus == 0 {
		return &domain.HOCResult{
			Value:          nil,
			Interpretation: "hippocampal occupancy undefined: no hippocampus volume segmented",
		}
	}

	value := float64(hippocampus) / float64(hippocampus+inferiorLateralVentricle)
	norm := snapshot.HOCNorm(age)
	zscore := round2((value - norm.Mean) / norm.SD)
	pct := percentileOf(zscore)

	interpretation, risk, note := hocBand(value)

	return &domain.HOCResult{
		Value:          &value,
		Expected:       norm.Mean,
		ZScore:         &zscore,
		Percentile:     &pct,
		Interpretation: fmt.Sprintf("%s (HOC %.2f)", interpretation, value),
		ConversionRisk: risk,
		ConversionNote: note,
	}
}
