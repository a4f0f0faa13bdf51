package service

import (
	"math"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

// Abramowitz & Stegun 7.1.26 rational approximation of erf, used for the
// standard normal CDF. The exact constants matter: percentiles must be
// reproducible bit-for-bit across releases so stored reports stay comparable.
const (
	asA1 = 0.254829592
	asA2 = -0.284496736
	asA3 = 1.421413741
	asA4 = -1.453152027
	asA5 = 1.061405429
	asP  = 0.3275911
)

// normalCDF returns P(Z <= z) for a standard normal variable. Satisfies
// normalCDF(0) == 0.5 and is monotonically non-decreasing.
func normalCDF(z float64) float64 {
	sign := 1.0
	if z < 0 {
		sign = -1.0
	}
	x := math.Abs(z) / math.Sqrt2

	t := 1.0 / (1.0 + asP*x)
	y := 1.0 - (((((asA5*t+asA4)*t)+asA3)*t+asA2)*t+asA1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}

// percentileOf converts a z-score to a 0-100 percentile.
func percentileOf(z float64) int {
	return int(math.Round(normalCDF(z) * 100))
}

// round2 rounds to two decimals, the precision z-scores are reported at.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// interpretEffectiveZ maps an effective z-score to its ordinal bucket.
// Boundary values belong to the better bucket (>= comparisons).
func interpretEffectiveZ(z float64) domain.Interpretation {
	switch {
	case z >= -1.0:
		return domain.INTERP_NORMAL
	case z >= -1.5:
		return domain.INTERP_LOW_NORMAL
	case z >= -2.0:
		return domain.INTERP_MILD
	case z >= -2.5:
		return domain.INTERP_MODERATE
	default:
		return domain.INTERP_SEVERE
	}
}

// scoreRegion computes the normative comparison for one region from its
// ICV-adjusted volume.
func scoreRegion(rp *domain.RegionProfile, rawVolume int64, adjustedVolume float64, patient domain.PatientContext) domain.ZScoreResult {
	means := rp.Means[patient.Sex]
	expectedMean := reference.InterpolateAge(means, patient.Age)
	adjustedSD := reference.AdjustSD(rp.SD[patient.Sex], patient.Age)

	zscore := round2((adjustedVolume - expectedMean) / adjustedSD)
	effective := zscore
	if rp.InvertZScore {
		effective = -zscore
	}

	return domain.ZScoreResult{
		Region:          rp.Key,
		ClinicalName:    rp.ClinicalName,
		RawVolume:       rawVolume,
		AdjustedVolume:  adjustedVolume,
		ExpectedMean:    expectedMean,
		ZScore:          zscore,
		EffectiveZScore: effective,
		Percentile:      percentileOf(zscore),
		Interpretation:  interpretEffectiveZ(effective),
		Significance:    rp.Significance,
	}
}
