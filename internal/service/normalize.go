package service

import (
	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

// applyICVNormalization removes head-size bias from a region volume by
// residual correction: adjusted = volume - b * (icv - icvMean), floored at
// zero. Regions without a tabulated coefficient pass through unchanged, and
// a patient whose ICV equals the reference mean is returned exactly as is.
func applyICVNormalization(volume float64, rp *domain.RegionProfile, icv float64, icvNorm reference.Norm) float64 {
	if rp.ICVBeta == nil {
		return volume
	}

	adjusted := volume - *rp.ICVBeta*(icv-icvNorm.Mean)
	if adjusted < 0 {
		return 0
	}
	return adjusted
}
