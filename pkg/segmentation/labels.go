package segmentation

import (
	"fmt"

	"github.com/neuroquant-report-server/internal/domain"
)

// tensorDim is the edge length of the conformed volume the inference model
// consumes: 256^3 voxels at 1 mm isotropic spacing, so voxel counts are
// directly volumes in mm^3.
const tensorDim = 256

// tensorSize is the byte length of one uint8 volume tensor.
const tensorSize = tensorDim * tensorDim * tensorDim

// classLabels maps the 18-class subcortical model's output indices to region
// labels. Index 0 is background and is never reported.
var classLabels = [18]string{
	0:  "Unknown",
	1:  "Cerebral-White-Matter",
	2:  "Cerebral-Cortex",
	3:  "Lateral-Ventricle",
	4:  "Inferior-Lateral-Ventricle",
	5:  "Cerebellum-White-Matter",
	6:  "Cerebellum-Cortex",
	7:  "Thalamus",
	8:  "Caudate",
	9:  "Putamen",
	10: "Pallidum",
	11: "3rd-Ventricle",
	12: "4th-Ventricle",
	13: "Brain-Stem",
	14: "Hippocampus",
	15: "Amygdala",
	16: "Accumbens-area",
	17: "VentralDC",
}

// CountVolumes reduces a label tensor to per-region voxel counts. Background
// voxels are dropped; an out-of-range class value fails the whole volume
// because it means the tensor is not output of the expected model.
func CountVolumes(labelData []byte) (domain.VolumeObservation, error) {
	if len(labelData) != tensorSize {
		return nil, fmt.Errorf("unexpected label tensor size: got %d bytes, want %d", len(labelData), tensorSize)
	}

	var counts [len(classLabels)]int64
	for _, class := range labelData {
		if int(class) >= len(classLabels) {
			return nil, fmt.Errorf("label tensor contains unknown class %d", class)
		}
		counts[class]++
	}

	volumes := make(domain.VolumeObservation, len(classLabels)-1)
	for class := 1; class < len(classLabels); class++ {
		if counts[class] > 0 {
			volumes[classLabels[class]] = counts[class]
		}
	}
	return volumes, nil
}
