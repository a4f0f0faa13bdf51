package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neuroquant-report-server/internal/domain"
)

func TestCountSeverities(t *testing.T) {
	counts := countSeverities(map[string]float64{
		"a": -2.8, // critical
		"b": -2.6, // critical
		"c": -2.2, // moderate
		"d": -1.7, // mild
		"e": -1.6, // mild
		"f": -1.4, // below every bucket
		"g": 0.5,
	})

	assert.Equal(t, 2, counts.Critical)
	assert.Equal(t, 1, counts.Moderate)
	assert.Equal(t, 2, counts.Mild)
}

func TestAggregateRisk(t *testing.T) {
	z := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		in       riskInputs
		expected domain.RiskLevel
	}{
		{
			"no evidence",
			riskInputs{RegionZ: map[string]float64{"a": 0.2, "b": -0.8}},
			domain.RISK_NORMAL,
		},
		{
			"single mild region",
			riskInputs{RegionZ: map[string]float64{"a": -1.7}},
			domain.RISK_LOW_NORMAL,
		},
		{
			"two mild regions",
			riskInputs{RegionZ: map[string]float64{"a": -1.7, "b": -1.6}},
			domain.RISK_MILD,
		},
		{
			"hippocampal low-normal signal alone",
			riskInputs{RegionZ: map[string]float64{"Hippocampus": -1.26}, HippocampusZ: z(-1.26)},
			domain.RISK_LOW_NORMAL,
		},
		{
			"hippocampal mild signal",
			riskInputs{RegionZ: map[string]float64{"Hippocampus": -1.8}, HippocampusZ: z(-1.8)},
			domain.RISK_MILD,
		},
		{
			"hippocampal moderate signal",
			riskInputs{RegionZ: map[string]float64{"Hippocampus": -2.2}, HippocampusZ: z(-2.2)},
			domain.RISK_MODERATE,
		},
		{
			"hippocampal critical signal",
			riskInputs{RegionZ: map[string]float64{"Hippocampus": -2.7}, HippocampusZ: z(-2.7)},
			domain.RISK_HIGH,
		},
		{
			"low BPF alone",
			riskInputs{RegionZ: map[string]float64{}, BPFZ: z(-1.8)},
			domain.RISK_MILD,
		},
		{
			"occupancy bands",
			riskInputs{RegionZ: map[string]float64{}, HOC: z(0.58)},
			domain.RISK_HIGH,
		},
		{
			"two critical regions",
			riskInputs{RegionZ: map[string]float64{"a": -2.8, "b": -2.9}},
			domain.RISK_HIGH,
		},
		{
			"one critical region without other evidence",
			riskInputs{RegionZ: map[string]float64{"a": -2.8}},
			domain.RISK_MODERATE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, aggregateRisk(tt.in))
		})
	}

	t.Run("higher severity rule wins when mild and moderate both match", func(t *testing.T) {
		// Two mild regions satisfy the Mild rule; the moderate region
		// simultaneously satisfies the Moderate rule. First match in
		// severity order must win.
		in := riskInputs{RegionZ: map[string]float64{
			"a": -1.7,
			"b": -1.6,
			"c": -2.2,
		}}
		assert.Equal(t, domain.RISK_MODERATE, aggregateRisk(in))
	})
}
