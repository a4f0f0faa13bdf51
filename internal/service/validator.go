package service

import (
	"fmt"
	"math"

	"github.com/neuroquant-report-server/internal/domain"
)

// Plausibility bounds for the post-hoc validation checks.
const (
	extremeZScoreBound      = 3.5
	extremeZScoreMinRegions = 3

	bpfUpperBound = 0.92
	bpfLowerBound = 0.55

	hippAmygRatioLow  = 1.2
	hippAmygRatioHigh = 4.5

	brainVolumeLowerBound = 800_000
	brainVolumeUpperBound = 1_700_000
)

// validateReport runs advisory plausibility checks on the assembled report.
// Every check appends a warning; none of them alters the computed numbers or
// invalidates the result.
func validateReport(report *domain.AnalysisReport) domain.ValidationResult {
	result := domain.ValidationResult{
		IsValid:           true,
		Warnings:          []domain.Finding{},
		Flags:             domain.QualityFlags{OverallQuality: "acceptable", PossibleIssues: []string{}},
		RecommendedAction: "none",
	}

	flag := func(issue string, severity domain.FindingSeverity, text string) {
		result.Warnings = append(result.Warnings, domain.Finding{
			Severity: severity,
			Text:     text,
			Type:     issue,
		})
		result.Flags.PossibleIssues = append(result.Flags.PossibleIssues, issue)
	}

	extreme := 0
	for _, r := range report.Regions {
		if math.Abs(r.ZScore) > extremeZScoreBound {
			extreme++
		}
	}
	if extreme >= extremeZScoreMinRegions {
		flag("multiple_extreme_zscores", domain.SEVERITY_WARNING,
			fmt.Sprintf("%d regions with |z| > %.1f; segmentation or demographic input may be inaccurate", extreme, extremeZScoreBound))
		result.Flags.OverallQuality = "review_recommended"
	}

	if report.BPF != nil {
		switch {
		case report.BPF.Value > bpfUpperBound:
			flag("bpf_too_high", domain.SEVERITY_WARNING,
				fmt.Sprintf("BPF %.3f exceeds %.2f; the ICV estimate may be too low", report.BPF.Value, bpfUpperBound))
		case report.BPF.Value < bpfLowerBound:
			flag("bpf_very_low", domain.SEVERITY_WARNING,
				fmt.Sprintf("BPF %.3f below %.2f; verify segmentation quality before clinical use", report.BPF.Value, bpfLowerBound))
		}
	}

	hipp, hippOK := report.Regions["Hippocampus"]
	amyg, amygOK := report.Regions["Amygdala"]
	if hippOK && amygOK && amyg.RawVolume > 0 {
		ratio := float64(hipp.RawVolume) / float64(amyg.RawVolume)
		if ratio < hippAmygRatioLow || ratio > hippAmygRatioHigh {
			flag("unusual_volume_ratio", domain.SEVERITY_WARNING,
				fmt.Sprintf("hippocampus/amygdala volume ratio %.2f outside the expected range [%.1f, %.1f]", ratio, hippAmygRatioLow, hippAmygRatioHigh))
		}
	}

	switch {
	case report.TotalBrainVolume < brainVolumeLowerBound:
		flag("brain_volume_low", domain.SEVERITY_WARNING,
			fmt.Sprintf("total brain volume %d mm3 below the plausible range", report.TotalBrainVolume))
	case report.TotalBrainVolume > brainVolumeUpperBound:
		flag("brain_volume_high", domain.SEVERITY_WARNING,
			fmt.Sprintf("total brain volume %d mm3 above the plausible range", report.TotalBrainVolume))
	}

	if lat, ok := report.Regions["Lateral-Ventricle"]; ok && hippOK {
		if hipp.EffectiveZScore < -2.0 && lat.ZScore < -1.0 {
			flag("discordant_atrophy_pattern", domain.SEVERITY_INFO,
				"hippocampal atrophy without the expected ventricular enlargement; atypical for a neurodegenerative process")
		}
	}

	if len(result.Warnings) > 0 && result.RecommendedAction == "none" {
		result.RecommendedAction = "review flagged measures against the source images"
	}
	if result.Flags.OverallQuality == "review_recommended" {
		result.RecommendedAction = "manual review recommended before clinical use"
	}

	return result
}
