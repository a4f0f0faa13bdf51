package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

func TestComputeBPF(t *testing.T) {
	snapshot := reference.Default()

	t.Run("value and zscore against the decade norm", func(t *testing.T) {
		// 1,170,000 / 1,500,000 = 0.780, exactly the age-70 expectation.
		result := computeBPF(snapshot, 1_170_000, 1_500_000, 70)
		require.NotNil(t, result)
		assert.InDelta(t, 0.780, result.Value, 1e-9)
		assert.InDelta(t, 0.0, result.ZScore, 1e-9)
		assert.Equal(t, domain.INTERP_NORMAL, result.Interpretation)
	})

	t.Run("severe atrophy", func(t *testing.T) {
		result := computeBPF(snapshot, 1_000_000, 1_500_000, 70)
		require.NotNil(t, result)
		assert.Equal(t, domain.INTERP_SEVERE, result.Interpretation)
	})

	t.Run("nil without a usable ICV", func(t *testing.T) {
		assert.Nil(t, computeBPF(snapshot, 1_170_000, 0, 70))
	})
}

func TestComputeHOC(t *testing.T) {
	snapshot := reference.Default()

	t.Run("zero hippocampus yields undefined value not an error", func(t *testing.T) {
		result := computeHOC(snapshot, 0, 1500, 70)
		require.NotNil(t, result)
		assert.Nil(t, result.Value)
		assert.NotEmpty(t, result.Interpretation)
	})

	t.Run("conversion risk banding", func(t *testing.T) {
		tests := []struct {
			name        string
			hippocampus int64
			ilv         int64
			risk        domain.ConversionRisk
		}{
			{"normal occupancy", 8000, 800, domain.CONVERSION_LOW},          // 0.909
			{"mildly reduced", 7000, 2000, domain.CONVERSION_MODERATE},      // 0.778
			{"moderately reduced", 6000, 3000, domain.CONVERSION_HIGH},      // 0.667
			{"severely reduced", 5000, 4500, domain.CONVERSION_VERY_HIGH},   // 0.526
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result := computeHOC(snapshot, tt.hippocampus, tt.ilv, 70)
				require.NotNil(t, result)
				require.NotNil(t, result.Value)
				assert.Equal(t, tt.risk, result.ConversionRisk)
				assert.NotEmpty(t, result.ConversionNote)
			})
		}
	})

	t.Run("zscore uses the age-decade norm", func(t *testing.T) {
		// 6000 / (6000 + 1725) = 0.7767; age-70 norm 0.81 / 0.055.
		result := computeHOC(snapshot, 6000, 1725, 70)
		require.NotNil(t, result)
		require.NotNil(t, result.ZScore)
		assert.InDelta(t, -0.61, *result.ZScore, 1e-9)
	})
}
