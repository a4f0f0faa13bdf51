package service

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPartitionVolumes(t *testing.T) {
	snapshot := reference.Default()

	parenchymal, ventricular := partitionVolumes(snapshot, map[string]int64{
		"Hippocampus":                6900,
		"Cerebral-Cortex":            463000,
		"Lateral-Ventricle":          30500,
		"Inferior-Lateral-Ventricle": 1725,
		"3rd-Ventricle":              1975,
	})

	assert.Equal(t, int64(469900), parenchymal)
	assert.Equal(t, int64(34200), ventricular)
}

func TestEstimateICV(t *testing.T) {
	snapshot := reference.Default()
	logger := quietLogger()

	t.Run("estimate stays inside the physiological band", func(t *testing.T) {
		volumes := map[string]int64{
			"Cerebral-White-Matter": 450000,
			"Cerebral-Cortex":       463000,
			"Cerebellum-Cortex":     99000,
			"Lateral-Ventricle":     30500,
		}

		for _, sex := range []domain.Sex{domain.MALE, domain.FEMALE} {
			icv := estimateICV(logger, snapshot, volumes, domain.PatientContext{Age: 70, Sex: sex})
			norm := snapshot.ICVNorm(sex)
			assert.GreaterOrEqual(t, float64(icv), norm.Mean-3*norm.SD)
			assert.LessOrEqual(t, float64(icv), norm.Mean+3*norm.SD)
		}
	})

	t.Run("primary estimator is parenchymal volume over expected BPF", func(t *testing.T) {
		volumes := map[string]int64{"Cerebral-White-Matter": 500000, "Cerebral-Cortex": 600000}
		icv := estimateICV(logger, snapshot, volumes, domain.PatientContext{Age: 70, Sex: domain.MALE})

		// 1,100,000 / 0.780 = 1,410,256.4; inside the male band, so the
		// BPF estimator is used directly.
		assert.Equal(t, int64(1410256), icv)
	})

	t.Run("estimate never drops below the segmented volume", func(t *testing.T) {
		volumes := map[string]int64{
			"Cerebral-White-Matter": 900000,
			"Cerebral-Cortex":       900000,
		}
		icv := estimateICV(logger, snapshot, volumes, domain.PatientContext{Age: 70, Sex: domain.MALE})
		assert.GreaterOrEqual(t, icv, int64(1800000))
	})

	t.Run("tiny segmentation clamps to the lower band edge", func(t *testing.T) {
		volumes := map[string]int64{"Hippocampus": 5000}
		icv := estimateICV(logger, snapshot, volumes, domain.PatientContext{Age: 70, Sex: domain.FEMALE})

		norm := snapshot.ICVNorm(domain.FEMALE)
		assert.Equal(t, int64(norm.Mean-3*norm.SD), icv)
	})
}
