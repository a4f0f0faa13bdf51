package service

import (
	"math"

	"github.com/neuroquant-report-server/internal/domain"
)

// Evans Index constants for the volumetric approximation
// EI = k * (lateralVentricles / ICV)^p, calibrated so typical ventricular
// volumes land near the radiological 0.25/0.30 cut points.
const (
	evansK = 0.42
	evansP = 0.30
)

// mtaFromRatio maps the ventricle-to-hippocampus ratio
// QMTA = inferiorLateralVentricle / hippocampus to an MTA grade through
// ordered ascending buckets.
func mtaFromRatio(qmta float64) float64 {
	switch {
	case qmta <= 0.10:
		return 0
	case qmta <= 0.20:
		return 1
	case qmta <= 0.35:
		return 2
	case qmta <= 0.55:
		return 3
	default:
		return 4
	}
}

// mtaFromZScore maps the hippocampal effective z-score to an MTA grade
// through ordered descending thresholds.
func mtaFromZScore(z float64) float64 {
	switch {
	case z >= -0.5:
		return 0
	case z >= -1.0:
		return 1
	case z >= -1.5:
		return 2
	case z >= -2.0:
		return 3
	default:
		return 4
	}
}

// mtaAgeThreshold is the age-adjusted grade above which an MTA score is
// considered abnormal.
func mtaAgeThreshold(age float64) float64 {
	switch {
	case age < 65:
		return 1.0
	case age < 75:
		return 1.5
	case age < 85:
		return 2.0
	default:
		return 2.5
	}
}

func mtaLabel(score float64) string {
	switch {
	case score < 1:
		return "no medial temporal atrophy"
	case score < 2:
		return "minimal medial temporal atrophy"
	case score < 3:
		return "moderate medial temporal atrophy"
	case score < 4:
		return "marked medial temporal atrophy"
	default:
		return "severe medial temporal atrophy"
	}
}

// computeMTA combines two independent MTA estimators, the volume-ratio one
// and the z-score one, by averaging and rounding to the nearest 0.5. Either
// estimator may be unavailable (hippocampus not segmented); the scale is
// omitted only when both are. MTA deliberately runs on the hippocampal
// effective z-score, while GCA and Koedam run on the raw cortical z-score;
// the asymmetry is inherited from the validated call sites.
func computeMTA(hippocampus, inferiorLateralVentricle int64, hippEffectiveZ *float64, age float64) *domain.MTAScore {
	var estimates []float64

	if hippocampus > 0 {
		qmta := float64(inferiorLateralVentricle) / float64(hippocampus)
		estimates = append(estimates, mtaFromRatio(qmta))
	}
	if hippEffectiveZ != nil {
		estimates = append(estimates, mtaFromZScore(*hippEffectiveZ))
	}
	if len(estimates) == 0 {
		return nil
	}

	var sum float64
	for _, e := range estimates {
		sum += e
	}
	score := math.Round(sum/float64(len(estimates))*2) / 2

	threshold := mtaAgeThreshold(age)
	return &domain.MTAScore{
		Score:        score,
		Label:        mtaLabel(score),
		AgeThreshold: threshold,
		Abnormal:     score > threshold,
	}
}

// corticalAtrophyGrade maps a cortical z-score to the shared GCA/Koedam
// 0-3 grade.
func corticalAtrophyGrade(z float64) int {
	switch {
	case z >= -0.5:
		return 0
	case z >= -1.5:
		return 1
	case z >= -2.5:
		return 2
	default:
		return 3
	}
}

func gcaLabel(score int) string {
	switch score {
	case 0:
		return "no cortical atrophy"
	case 1:
		return "mild cortical atrophy"
	case 2:
		return "moderate cortical atrophy"
	default:
		return "severe cortical atrophy"
	}
}

// computeGCA derives the global cortical atrophy grade from the raw cortical
// z-score with an age-adjusted abnormality threshold.
func computeGCA(corticalZ *float64, age float64) *domain.GCAScore {
	if corticalZ == nil {
		return nil
	}

	score := corticalAtrophyGrade(*corticalZ)
	threshold := 1
	if age >= 75 {
		threshold = 2
	}

	return &domain.GCAScore{
		Score:        score,
		Label:        gcaLabel(score),
		AgeThreshold: threshold,
		Abnormal:     score > threshold,
	}
}

// computeKoedam estimates the posterior atrophy grade. No independent
// parietal/precuneus signal is available from the segmentation, so the grade
// reuses the cortical proxy and is always reported as an estimate, never as
// a normal/abnormal verdict.
func computeKoedam(corticalZ *float64) *domain.KoedamScore {
	if corticalZ == nil {
		return nil
	}

	score := corticalAtrophyGrade(*corticalZ)
	return &domain.KoedamScore{
		Score:  score,
		Label:  gcaLabel(score),
		Caveat: "estimated from the global cortical signal; no independent posterior measure available",
	}
}

func evansBand(value float64) string {
	switch {
	case value <= 0.25:
		return "normal"
	case value <= 0.30:
		return "borderline"
	default:
		return "enlarged"
	}
}

// computeEvansIndex approximates the Evans Index from the lateral-ventricle
// volume fraction of the ICV. Strictly increasing in ventricular volume and
// strictly decreasing in ICV.
func computeEvansIndex(lateralVentricles, icv int64) *domain.EvansIndexScore {
	if icv <= 0 || lateralVentricles < 0 {
		return nil
	}

	value := evansK * math.Pow(float64(lateralVentricles)/float64(icv), evansP)
	band := evansBand(value)

	return &domain.EvansIndexScore{
		Value:    value,
		Band:     band,
		Abnormal: band == "enlarged",
	}
}
