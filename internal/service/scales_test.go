package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMTA(t *testing.T) {
	z := func(v float64) *float64 { return &v }

	tests := []struct {
		name        string
		hippocampus int64
		ilv         int64
		hippZ       *float64
		age         float64
		expected    *float64
		abnormal    bool
	}{
		{"both estimators agree on zero", 8000, 600, z(0.2), 70, z(0), false},
		{"ratio only", 8000, 2000, nil, 70, z(2), true},
		{"zscore only", 0, 2000, z(-1.8), 70, z(3), true},
		{"estimators averaged and rounded to half", 8000, 2000, z(-0.8), 70, z(1.5), false},
		{"severe on both", 4000, 3000, z(-3.0), 70, z(4), true},
		{"age raises the abnormality bar", 8000, 2000, z(-1.2), 86, z(2), false},
		{"no inputs available", 0, 2000, nil, 70, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := computeMTA(tt.hippocampus, tt.ilv, tt.hippZ, tt.age)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, *tt.expected, result.Score)
			assert.Equal(t, tt.abnormal, result.Abnormal)
			assert.NotEmpty(t, result.Label)
		})
	}
}

func TestComputeGCA(t *testing.T) {
	z := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		z        *float64
		age      float64
		score    int
		abnormal bool
	}{
		{"no atrophy", z(0.3), 70, 0, false},
		{"mild within threshold", z(-1.0), 70, 1, false},
		{"moderate abnormal under 75", z(-2.0), 70, 2, true},
		{"moderate tolerated at 80", z(-2.0), 80, 2, false},
		{"severe abnormal at any age", z(-3.0), 80, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := computeGCA(tt.z, tt.age)
			require.NotNil(t, result)
			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, tt.abnormal, result.Abnormal)
		})
	}

	t.Run("nil without cortical signal", func(t *testing.T) {
		assert.Nil(t, computeGCA(nil, 70))
	})
}

func TestComputeKoedam(t *testing.T) {
	z := -2.0
	result := computeKoedam(&z)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Score)
	assert.NotEmpty(t, result.Caveat)

	assert.Nil(t, computeKoedam(nil))
}

func TestComputeEvansIndex(t *testing.T) {
	const icv = int64(1_500_000)

	t.Run("strictly increasing in ventricular volume", func(t *testing.T) {
		prev := -1.0
		for vol := int64(5000); vol <= 120000; vol += 5000 {
			result := computeEvansIndex(vol, icv)
			require.NotNil(t, result)
			assert.Greater(t, result.Value, prev)
			prev = result.Value
		}
	})

	t.Run("strictly decreasing in ICV", func(t *testing.T) {
		prev := 2.0
		for v := int64(1_200_000); v <= 1_900_000; v += 100_000 {
			result := computeEvansIndex(40000, v)
			require.NotNil(t, result)
			assert.Less(t, result.Value, prev)
			prev = result.Value
		}
	})

	t.Run("banding", func(t *testing.T) {
		normal := computeEvansIndex(20000, icv)
		require.NotNil(t, normal)
		assert.Equal(t, "normal", normal.Band)
		assert.False(t, normal.Abnormal)

		borderline := computeEvansIndex(300_000, icv)
		require.NotNil(t, borderline)
		assert.Equal(t, "borderline", borderline.Band)
		assert.False(t, borderline.Abnormal)

		enlarged := computeEvansIndex(500_000, icv)
		require.NotNil(t, enlarged)
		assert.Equal(t, "enlarged", enlarged.Band)
		assert.True(t, enlarged.Abnormal)
	})

	t.Run("nil without a usable ICV", func(t *testing.T) {
		assert.Nil(t, computeEvansIndex(40000, 0))
	})
}
