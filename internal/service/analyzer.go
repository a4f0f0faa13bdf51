package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/neuroquant-report-server/internal/domain"
	"github.com/neuroquant-report-server/internal/reference"
)

// ProgressFunc receives pipeline stage notifications during an analysis.
type ProgressFunc func(stage string)

// Analyzer runs the volumetric analysis pipeline over an immutable reference
// snapshot. It is stateless between calls; concurrent analyses are safe.
type Analyzer struct {
	logger   *logrus.Logger
	snapshot *reference.Snapshot
}

// NewAnalyzer creates an analyzer bound to a reference snapshot.
func NewAnalyzer(logger *logrus.Logger, snapshot *reference.Snapshot) *Analyzer {
	return &Analyzer{logger: logger, snapshot: snapshot}
}

// Snapshot returns the reference snapshot the analyzer scores against.
func (a *Analyzer) Snapshot() *reference.Snapshot {
	return a.snapshot
}

// Analyze produces a complete report for one observation.
func (a *Analyzer) Analyze(volumes domain.VolumeObservation, patient domain.PatientContext) (*domain.AnalysisReport, error) {
	return a.AnalyzeWithProgress(volumes, patient, nil)
}

// AnalyzeWithProgress runs the full pipeline, invoking progress after each
// completed stage. The report is assembled once and never mutated afterwards;
// a missing observation is the only fatal condition.
func (a *Analyzer) AnalyzeWithProgress(volumes domain.VolumeObservation, patient domain.PatientContext, progress ProgressFunc) (*domain.AnalysisReport, error) {
	if err := patient.Validate(); err != nil {
		return nil, err
	}
	if err := volumes.Validate(); err != nil {
		return nil, err
	}

	notify := func(stage string) {
		if progress != nil {
			progress(stage)
		}
	}

	start := time.Now()
	reportID := uuid.New().String()
	log := a.logger.WithFields(logrus.Fields{
		"report_id": reportID,
		"age":       patient.Age,
		"sex":       patient.Sex,
		"labels":    len(volumes),
	})
	log.Info("Starting volumetric analysis")

	resolved, unresolved := a.resolveVolumes(volumes)
	if len(unresolved) > 0 {
		log.WithField("unresolved_labels", unresolved).Debug("Labels excluded from scoring")
	}
	notify("resolve")

	icv := estimateICV(a.logger, a.snapshot, resolved, patient)
	parenchymal, _ := partitionVolumes(a.snapshot, resolved)
	notify("icv")

	icvNorm := a.snapshot.ICVNorm(patient.Sex)
	regions := make(map[string]domain.ZScoreResult, len(resolved))
	for key, vol := range resolved {
		rp, ok := a.snapshot.Region(key)
		if !ok {
			continue
		}
		adjusted := applyICVNormalization(float64(vol), rp, float64(icv), icvNorm)
		regions[key] = scoreRegion(rp, vol, adjusted, patient)
	}
	notify("zscore")

	bpf := computeBPF(a.snapshot, parenchymal, icv, patient.Age)
	hippVol := resolved["Hippocampus"]
	ilvVol := resolved["Inferior-Lateral-Ventricle"]
	var hoc *domain.HOCResult
	if _, present := resolved["Hippocampus"]; present || ilvVol > 0 {
		hoc = computeHOC(a.snapshot, hippVol, ilvVol, patient.Age)
	}
	notify("biomarkers")

	hippZ := effectiveZOf(regions, "Hippocampus")
	corticalZ := rawZOf(regions, "Cerebral-Cortex")
	lateralVol := resolved["Lateral-Ventricle"] + ilvVol

	scales := domain.StandardizedScores{
		MTA:    computeMTA(hippVol, ilvVol, hippZ, patient.Age),
		GCA:    computeGCA(corticalZ, patient.Age),
		Koedam: computeKoedam(corticalZ),
		Evans:  computeEvansIndex(lateralVol, icv),
	}
	notify("scales")

	var bpfZ *float64
	if bpf != nil {
		z := bpf.ZScore
		bpfZ = &z
	}
	var hocValue *float64
	if hoc != nil && hoc.Value != nil {
		hocValue = hoc.Value
	}

	patterns := detectPatterns(patternInputs{
		HippocampusZ:              hippZ,
		AmygdalaZ:                 effectiveZOf(regions, "Amygdala"),
		CaudateZ:                  effectiveZOf(regions, "Caudate"),
		WhiteMatterZ:              effectiveZOf(regions, "Cerebral-White-Matter"),
		InferiorLateralVentricleZ: rawZOf(regions, "Inferior-Lateral-Ventricle"),
		BPFZ:                      bpfZ,
		HOC:                       hocValue,
	})
	notify("patterns")

	regionZ := make(map[string]float64, len(regions))
	for key, r := range regions {
		regionZ[key] = r.EffectiveZScore
	}
	risk := aggregateRisk(riskInputs{
		RegionZ:      regionZ,
		HippocampusZ: hippZ,
		BPFZ:         bpfZ,
		HOC:          hocValue,
	})
	notify("risk")

	report := &domain.AnalysisReport{
		ID:               reportID,
		CreatedAt:        time.Now().UTC(),
		Age:              patient.Age,
		Sex:              patient.Sex,
		Regions:          regions,
		TotalBrainVolume: parenchymal,
		EstimatedICV:     icv,
		BPF:              bpf,
		HOC:              hoc,
		Scales:           scales,
		Patterns:         patterns,
		Risk:             risk,
		RiskDescription:  risk.Description(),
	}

	report.Validation = validateReport(report)
	notify("validate")

	report.Findings = assembleFindings(report)
	notify("assemble")

	log.WithFields(logrus.Fields{
		"risk":        report.Risk,
		"regions":     len(report.Regions),
		"findings":    len(report.Findings),
		"icv":         report.EstimatedICV,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Volumetric analysis complete")

	return report, nil
}

// resolveVolumes maps raw segmentation labels onto canonical region keys.
// Labels resolving to the same region are summed; unresolved labels are
// excluded from scoring and returned for logging.
func (a *Analyzer) resolveVolumes(volumes domain.VolumeObservation) (map[string]int64, []string) {
	resolved := make(map[string]int64, len(volumes))
	var unresolved []string

	for label, vol := range volumes {
		key, ok := a.snapshot.ResolveRegion(label)
		if !ok {
			unresolved = append(unresolved, label)
			continue
		}
		resolved[key] += vol
	}
	sort.Strings(unresolved)
	return resolved, unresolved
}

func effectiveZOf(regions map[string]domain.ZScoreResult, key string) *float64 {
	r, ok := regions[key]
	if !ok {
		return nil
	}
	z := r.EffectiveZScore
	return &z
}

func rawZOf(regions map[string]domain.ZScoreResult, key string) *float64 {
	r, ok := regions[key]
	if !ok {
		return nil
	}
	z := r.ZScore
	return &z
}

// assembleFindings merges clinical and data-quality findings into one list
// sorted danger, warning, info. The sort is stable so findings of equal
// severity keep their construction order.
func assembleFindings(report *domain.AnalysisReport) []domain.Finding {
	findings := make([]domain.Finding, 0, len(report.Regions))

	keys := make([]string, 0, len(report.Regions))
	for key := range report.Regions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		r := report.Regions[key]
		f, ok := regionFinding(r)
		if ok {
			findings = append(findings, f)
		}
	}

	if report.BPF != nil && report.BPF.Interpretation != domain.INTERP_NORMAL {
		findings = append(findings, domain.Finding{
			Severity: severityForInterpretation(report.BPF.Interpretation),
			Type:     "biomarker",
			Text:     fmt.Sprintf("Brain parenchymal fraction %.3f (z=%.2f), %s for age", report.BPF.Value, report.BPF.ZScore, report.BPF.Interpretation),
		})
	}
	if report.HOC != nil && report.HOC.Value != nil && *report.HOC.Value < 0.80 {
		findings = append(findings, domain.Finding{
			Severity: domain.SEVERITY_WARNING,
			Type:     "biomarker",
			Text:     fmt.Sprintf("%s; %s conversion risk (%s)", report.HOC.Interpretation, report.HOC.ConversionRisk, report.HOC.ConversionNote),
		})
	}

	for _, p := range report.Patterns {
		findings = append(findings, domain.Finding{
			Severity: domain.SEVERITY_INFO,
			Type:     "pattern",
			Text:     fmt.Sprintf("%s (%s confidence): %s", p.Name, p.Confidence, p.Recommendation),
		})
	}

	findings = append(findings, report.Validation.Warnings...)

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() > findings[j].Severity.Rank()
	})
	return findings
}

// regionFinding turns a scored region into a clinical finding. Normal and
// low-normal regions produce none.
func regionFinding(r domain.ZScoreResult) (domain.Finding, bool) {
	switch r.Interpretation {
	case domain.INTERP_NORMAL, domain.INTERP_LOW_NORMAL:
		return domain.Finding{}, false
	}

	return domain.Finding{
		Severity: severityForInterpretation(r.Interpretation),
		Type:     "region",
		Text:     fmt.Sprintf("%s volume %s for age and sex (z=%.2f, %dth percentile)", r.ClinicalName, r.Interpretation, r.ZScore, r.Percentile),
	}, true
}

func severityForInterpretation(interp domain.Interpretation) domain.FindingSeverity {
	switch interp {
	case domain.INTERP_SEVERE:
		return domain.SEVERITY_DANGER
	case domain.INTERP_MODERATE, domain.INTERP_MILD:
		return domain.SEVERITY_WARNING
	default:
		return domain.SEVERITY_INFO
	}
}
