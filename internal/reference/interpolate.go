package reference

import "github.com/neuroquant-report-server/internal/domain"

// InterpolateAge returns the expected mean at the given age from values
// tabulated at the anchors 20/40/60/80. Ages at or below 20 clamp to the
// first anchor, ages at or above 80 clamp to the last; between anchors the
// bracketing pair is interpolated linearly.
func InterpolateAge(values [4]float64, age float64) float64 {
	anchors := domain.AgeAnchors

	if age <= anchors[0] {
		return values[0]
	}
	if age >= anchors[len(anchors)-1] {
		return values[len(values)-1]
	}

	for i := 0; i < len(anchors)-1; i++ {
		lo, hi := anchors[i], anchors[i+1]
		if age <= hi {
			t := (age - lo) / (hi - lo)
			return values[i] + t*(values[i+1]-values[i])
		}
	}
	return values[len(values)-1]
}

// AdjustSD widens the base standard deviation for ages past 50 to account
// for growing population variance: sd * (1 + (age-50) * 0.001).
func AdjustSD(sd, age float64) float64 {
	if age > 50 {
		return sd * (1 + (age-50)*0.001)
	}
	return sd
}
