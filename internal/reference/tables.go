package reference

import "github.com/neuroquant-report-server/internal/domain"

// builtinVersion identifies the compiled-in table set. Bump when any value
// below changes so stored reports can be traced to the tables that scored them.
const builtinVersion = "2024.2-builtin"

func beta(v float64) *float64 { return &v }

func zthr(v float64) *float64 { return &v }

// builtinRegions are the normative profiles for the 17 structures of the
// 18-class subcortical segmentation model (background excluded). Volumes are
// bilateral totals in mm^3; means are tabulated at ages 20/40/60/80.
var builtinRegions = []*domain.RegionProfile{
	{
		Key:          "Cerebral-White-Matter",
		ClinicalName: "Cerebral white matter",
		Description:  "Supratentorial white matter, both hemispheres",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {465000, 478000, 468000, 432000},
			domain.FEMALE: {410000, 422000, 412000, 380000},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 38000, domain.FEMALE: 34000},
		Significance: domain.SIGNIFICANCE_MEDIUM,
		ICVBeta:      beta(0.25),
	},
	{
		Key:          "Cerebral-Cortex",
		ClinicalName: "Cerebral cortex",
		Description:  "Cortical gray matter, both hemispheres",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {520000, 500000, 478000, 448000},
			domain.FEMALE: {462000, 444000, 424000, 398000},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 36000, domain.FEMALE: 32000},
		Significance: domain.SIGNIFICANCE_HIGH,
		ICVBeta:      beta(0.22),
	},
	{
		Key:          "Lateral-Ventricle",
		ClinicalName: "Lateral ventricles",
		Description:  "Bodies and horns of both lateral ventricles",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {10500, 14500, 22500, 38500},
			domain.FEMALE: {9000, 12500, 19500, 34000},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 8000, domain.FEMALE: 7000},
		InvertZScore: true,
		Significance: domain.SIGNIFICANCE_MEDIUM,
	},
	{
		Key:          "Inferior-Lateral-Ventricle",
		ClinicalName: "Inferior lateral ventricles",
		Description:  "Temporal horns of the lateral ventricles",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {650, 850, 1250, 2200},
			domain.FEMALE: {550, 750, 1100, 2000},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 450, domain.FEMALE: 400},
		InvertZScore: true,
		Significance: domain.SIGNIFICANCE_HIGH,
	},
	{
		Key:          "Cerebellum-White-Matter",
		ClinicalName: "Cerebellar white matter",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {28500, 29000, 28000, 26000},
			domain.FEMALE: {25500, 26000, 25000, 23200},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 3200, domain.FEMALE: 2900},
		Significance: domain.SIGNIFICANCE_LOW,
		ICVBeta:      beta(0.015),
	},
	{
		Key:          "Cerebellum-Cortex",
		ClinicalName: "Cerebellar cortex",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {108000, 106000, 102000, 96000},
			domain.FEMALE: {99000, 97000, 93500, 88000},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 9500, domain.FEMALE: 8700},
		Significance: domain.SIGNIFICANCE_LOW,
		ICVBeta:      beta(0.05),
	},
	{
		Key:          "Thalamus",
		ClinicalName: "Thalamus",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {15800, 15200, 14300, 13000},
			domain.FEMALE: {14200, 13700, 12900, 11700},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 1300, domain.FEMALE: 1150},
		Significance: domain.SIGNIFICANCE_MEDIUM,
		ICVBeta:      beta(0.008),
	},
	{
		Key:          "Caudate",
		ClinicalName: "Caudate nucleus",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {7400, 7100, 6800, 6300},
			domain.FEMALE: {6800, 6550, 6250, 5800},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 750, domain.FEMALE: 700},
		Significance: domain.SIGNIFICANCE_MEDIUM,
		ICVBeta:      beta(0.004),
	},
	{
		Key:          "Putamen",
		ClinicalName: "Putamen",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {10400, 9800, 9100, 8200},
			domain.FEMALE: {9400, 8900, 8250, 7450},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 950, domain.FEMALE: 870},
		Significance: domain.SIGNIFICANCE_LOW,
		ICVBeta:      beta(0.005),
	},
	{
		Key:          "Pallidum",
		ClinicalName: "Globus pallidus",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {3600, 3450, 3250, 2950},
			domain.FEMALE: {3250, 3100, 2950, 2650},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 380, domain.FEMALE: 350},
		Significance: domain.SIGNIFICANCE_LOW,
		ICVBeta:      beta(0.002),
	},
	{
		Key:          "3rd-Ventricle",
		ClinicalName: "Third ventricle",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {900, 1150, 1550, 2400},
			domain.FEMALE: {800, 1000, 1400, 2150},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 500, domain.FEMALE: 450},
		InvertZScore: true,
		Significance: domain.SIGNIFICANCE_LOW,
	},
	{
		Key:          "4th-Ventricle",
		ClinicalName: "Fourth ventricle",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {1700, 1800, 1950, 2250},
			domain.FEMALE: {1550, 1650, 1800, 2050},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 550, domain.FEMALE: 500},
		InvertZScore: true,
		Significance: domain.SIGNIFICANCE_LOW,
	},
	{
		Key:          "Brain-Stem",
		ClinicalName: "Brain stem",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {22500, 22200, 21600, 20500},
			domain.FEMALE: {19800, 19500, 19000, 18000},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 2100, domain.FEMALE: 1900},
		Significance: domain.SIGNIFICANCE_LOW,
		ICVBeta:      beta(0.012),
	},
	{
		Key:          "Hippocampus",
		ClinicalName: "Hippocampus",
		Description:  "Bilateral hippocampal formation",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {7900, 7700, 7400, 6400},
			domain.FEMALE: {7200, 7050, 6750, 5850},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 700, domain.FEMALE: 640},
		Significance: domain.SIGNIFICANCE_CRITICAL,
		MCIThreshold: zthr(-1.5),
		ADThreshold:  zthr(-2.0),
	},
	{
		Key:          "Amygdala",
		ClinicalName: "Amygdala",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {3550, 3450, 3300, 3000},
			domain.FEMALE: {3150, 3070, 2930, 2670},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 420, domain.FEMALE: 380},
		Significance: domain.SIGNIFICANCE_HIGH,
		MCIThreshold: zthr(-1.5),
		ADThreshold:  zthr(-2.2),
	},
	{
		Key:          "Accumbens-area",
		ClinicalName: "Nucleus accumbens",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {1250, 1150, 1000, 820},
			domain.FEMALE: {1130, 1040, 900, 740},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 180, domain.FEMALE: 165},
		Significance: domain.SIGNIFICANCE_LOW,
	},
	{
		Key:          "VentralDC",
		ClinicalName: "Ventral diencephalon",
		Means: map[domain.Sex][4]float64{
			domain.MALE:   {8200, 8050, 7800, 7350},
			domain.FEMALE: {7350, 7200, 7000, 6600},
		},
		SD:           map[domain.Sex]float64{domain.MALE: 720, domain.FEMALE: 650},
		Significance: domain.SIGNIFICANCE_LOW,
		ICVBeta:      beta(0.004),
	},
}

// builtinAliases maps common label variants that the normalized and substring
// passes cannot reach to their canonical keys. Keys are matched after
// separator stripping and lowercasing.
var builtinAliases = map[string]string{
	"accumbens":       "Accumbens-area",
	"brainstem":       "Brain-Stem",
	"third ventricle": "3rd-Ventricle",
	"fourth ventricle": "4th-Ventricle",
	"temporal horn":   "Inferior-Lateral-Ventricle",
	"white matter":    "Cerebral-White-Matter",
	"cortex":          "Cerebral-Cortex",
	"gray matter":     "Cerebral-Cortex",
	"ventral dc":      "VentralDC",
}

// builtinICV are the sex-specific intracranial-volume norms (mm^3).
var builtinICV = map[domain.Sex]Norm{
	domain.MALE:   {Mean: 1550000, SD: 130000},
	domain.FEMALE: {Mean: 1380000, SD: 120000},
}

// builtinBPF are the expected brain-parenchymal-fraction norms per decade.
var builtinBPF = map[int]Norm{
	20: {Mean: 0.860, SD: 0.022},
	30: {Mean: 0.852, SD: 0.022},
	40: {Mean: 0.840, SD: 0.023},
	50: {Mean: 0.822, SD: 0.024},
	60: {Mean: 0.800, SD: 0.025},
	70: {Mean: 0.780, SD: 0.026},
	80: {Mean: 0.752, SD: 0.028},
}

// builtinHOC are the expected hippocampal-occupancy norms per decade. HOC
// reference cohorts start at 50; younger patients clamp to the first anchor.
var builtinHOC = map[int]Norm{
	50: {Mean: 0.88, SD: 0.045},
	60: {Mean: 0.85, SD: 0.050},
	70: {Mean: 0.81, SD: 0.055},
	80: {Mean: 0.76, SD: 0.060},
}
