package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

func TestNormalCDF(t *testing.T) {
	t.Run("zero maps to one half", func(t *testing.T) {
		assert.InDelta(t, 0.5, normalCDF(0), 1e-6)
	})

	t.Run("known quantiles", func(t *testing.T) {
		tests := []struct {
			z        float64
			expected float64
		}{
			{-1.96, 0.025},
			{-1.0, 0.1587},
			{1.0, 0.8413},
			{1.96, 0.975},
		}

		for _, tt := range tests {
			assert.InDelta(t, tt.expected, normalCDF(tt.z), 0.001, "z=%v", tt.z)
		}
	})

	t.Run("monotonically non-decreasing", func(t *testing.T) {
		prev := normalCDF(-6)
		for z := -5.9; z <= 6; z += 0.1 {
			cur := normalCDF(z)
			assert.GreaterOrEqual(t, cur, prev, "z=%v", z)
			prev = cur
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		for _, z := range []float64{0.5, 1.26, 2.5, 3.7} {
			assert.InDelta(t, 1.0, normalCDF(z)+normalCDF(-z), 1e-9)
		}
	})
}

func TestInterpretEffectiveZ(t *testing.T) {
	tests := []struct {
		name     string
		z        float64
		expected domain.Interpretation
	}{
		{"well above range", 2.0, domain.INTERP_NORMAL},
		{"boundary normal", -1.0, domain.INTERP_NORMAL},
		{"just below normal", -1.01, domain.INTERP_LOW_NORMAL},
		{"boundary low-normal", -1.5, domain.INTERP_LOW_NORMAL},
		{"just below low-normal", -1.51, domain.INTERP_MILD},
		{"boundary mild", -2.0, domain.INTERP_MILD},
		{"just below mild", -2.01, domain.INTERP_MODERATE},
		{"boundary moderate", -2.5, domain.INTERP_MODERATE},
		{"below moderate", -2.51, domain.INTERP_SEVERE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, interpretEffectiveZ(tt.z))
		})
	}
}

func TestScoreRegion(t *testing.T) {
	snapshot := reference.Default()
	patient := domain.PatientContext{Age: 70, Sex: domain.MALE}

	t.Run("z-score strictly increasing in volume", func(t *testing.T) {
		rp, ok := snapshot.Region("Hippocampus")
		require.True(t, ok)

		prev := math.Inf(-1)
		for vol := int64(4000); vol <= 9000; vol += 500 {
			r := scoreRegion(rp, vol, float64(vol), patient)
			assert.Greater(t, r.ZScore, prev)
			assert.Equal(t, r.ZScore, r.EffectiveZScore)
			prev = r.ZScore
		}
	})

	t.Run("effective z-score strictly decreasing for ventricular region", func(t *testing.T) {
		rp, ok := snapshot.Region("Lateral-Ventricle")
		require.True(t, ok)
		require.True(t, rp.InvertZScore)

		prev := math.Inf(1)
		for vol := int64(10000); vol <= 60000; vol += 5000 {
			r := scoreRegion(rp, vol, float64(vol), patient)
			assert.Less(t, r.EffectiveZScore, prev)
			assert.Equal(t, -r.ZScore, r.EffectiveZScore)
			prev = r.EffectiveZScore
		}
	})

	t.Run("age seventy male hippocampal reference case", func(t *testing.T) {
		rp, ok := snapshot.Region("Hippocampus")
		require.True(t, ok)

		r := scoreRegion(rp, 6000, 6000, patient)
		assert.InDelta(t, 6900.0, r.ExpectedMean, 1e-9)
		assert.InDelta(t, -1.26, r.ZScore, 1e-9)
		assert.Equal(t, domain.INTERP_LOW_NORMAL, r.Interpretation)
	})
}

func TestApplyICVNormalization(t *testing.T) {
	snapshot := reference.Default()
	icvNorm := snapshot.ICVNorm(domain.MALE)

	t.Run("identity when ICV equals the reference mean", func(t *testing.T) {
		rp, ok := snapshot.Region("Cerebral-White-Matter")
		require.True(t, ok)
		require.NotNil(t, rp.ICVBeta)

		adjusted := applyICVNormalization(450000, rp, icvNorm.Mean, icvNorm)
		assert.Equal(t, 450000.0, adjusted)
	})

	t.Run("passthrough without a coefficient", func(t *testing.T) {
		rp, ok := snapshot.Region("Hippocampus")
		require.True(t, ok)
		require.Nil(t, rp.ICVBeta)

		adjusted := applyICVNormalization(6000, rp, icvNorm.Mean+200000, icvNorm)
		assert.Equal(t, 6000.0, adjusted)
	})

	t.Run("large head corrected downward", func(t *testing.T) {
		rp, ok := snapshot.Region("Cerebral-Cortex")
		require.True(t, ok)

		adjusted := applyICVNormalization(500000, rp, icvNorm.Mean+100000, icvNorm)
		assert.InDelta(t, 500000-0.22*100000, adjusted, 1e-9)
	})

	t.Run("floored at zero", func(t *testing.T) {
		rp, ok := snapshot.Region("Cerebral-White-Matter")
		require.True(t, ok)

		adjusted := applyICVNormalization(100, rp, icvNorm.Mean+1e7, icvNorm)
		assert.Equal(t, 0.0, adjusted)
	})
}
