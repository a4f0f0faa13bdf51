package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

const (
	// anatomicalCSFFactor scales the segmented total for sulcal CSF and
	// meninges the parenchymal+ventricular segmentation does not capture.
	anatomicalCSFFactor = 1.12

	// segmentedTotalFloor keeps the ICV estimate above the volume that was
	// actually segmented.
	segmentedTotalFloor = 1.05

	// physiologicalBandSDs bounds the estimate to mean +/- 3 SD of the
	// sex-specific reference ICV.
	physiologicalBandSDs = 3.0
)

// partitionVolumes splits resolved region volumes into ventricular and
// parenchymal totals. A region is ventricular iff its canonical key contains
// "ventricle" (case-insensitive).
func partitionVolumes(snapshot *reference.Snapshot, volumes map[string]int64) (parenchymal, ventricular int64) {
	for key, vol := range volumes {
		rp, ok := snapshot.Region(key)
		if ok && rp.IsVentricular() {
			ventricular += vol
		} else {
			parenchymal += vol
		}
	}
	return parenchymal, ventricular
}

// estimateICV derives the intracranial volume from the segmented totals
// using two independent estimators:
//
//   - A population-BPF estimator: parenchymal volume divided by the expected
//     brain parenchymal fraction for the patient's age decade.
//   - An anatomical estimator: segmented total scaled by a fixed CSF factor.
//
// The BPF estimate is primary; when it falls outside the sex-specific
// physiological band the two estimators are averaged. The result is clamped
// to stay above the segmented volume and inside the physiological band, then
// rounded to whole mm^3.
func estimateICV(logger *logrus.Logger, snapshot *reference.Snapshot, volumes map[string]int64, patient domain.PatientContext) int64 {
	parenchymal, ventricular := partitionVolumes(snapshot, volumes)
	segmentedTotal := float64(parenchymal + ventricular)

	expectedBPF := snapshot.BPFNorm(patient.Age).Mean
	icvA := float64(parenchymal) / expectedBPF
	icvB := segmentedTotal * anatomicalCSFFactor

	norm := snapshot.ICVNorm(patient.Sex)
	lower := norm.Mean - physiologicalBandSDs*norm.SD
	upper := norm.Mean + physiologicalBandSDs*norm.SD

	estimate := icvA
	if estimate < lower || estimate > upper {
		logger.WithFields(logrus.Fields{
			"icv_bpf_estimate":        icvA,
			"icv_anatomical_estimate": icvB,
			"band_lower":              lower,
			"band_upper":              upper,
		}).Debug("BPF-based ICV estimate outside physiological band, averaging estimators")
		estimate = (icvA + icvB) / 2
	}

	// Clamp order matters: segmented floor, upper band, lower band.
	if floor := segmentedTotal * segmentedTotalFloor; estimate < floor {
		estimate = floor
	}
	if estimate > upper {
		estimate = upper
	}
	if estimate < lower {
		estimate = lower
	}

	return int64(math.Round(estimate))
}
