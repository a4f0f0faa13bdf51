// Package reference holds the immutable normative data consumed by the
// analysis pipeline: per-region means and standard deviations by age anchor
// and sex, ICV/BPF/HOC population norms, head-size regression coefficients
// and the region-label alias table.
//
// A Snapshot is constructed once, validated, and never mutated afterwards;
// concurrent analyses share it without locking. Reloading is a full-replace
// operation producing a new Snapshot.
package reference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/neuroquant-report-server/internal/domain"
)

// Norm is a population mean/SD pair.
type Norm struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Snapshot is one immutable version of the reference tables.
type Snapshot struct {
	version string

	regions map[string]*domain.RegionProfile
	// order fixes the iteration order of substring resolution so that
	// ambiguous labels resolve deterministically.
	order   []string
	aliases map[string]string

	icv map[domain.Sex]Norm
	bpf map[int]Norm
	hoc map[int]Norm
}

// snapshotFile is the on-disk JSON shape of a reference snapshot.
type snapshotFile struct {
	Version string                  `json:"version"`
	Regions []*domain.RegionProfile `json:"regions"`
	Aliases map[string]string       `json:"aliases"`
	ICV     map[domain.Sex]Norm     `json:"icv"`
	BPF     map[int]Norm            `json:"bpf"`
	HOC     map[int]Norm            `json:"hoc"`
}

// Default returns the compiled-in reference snapshot.
func Default() *Snapshot {
	s, err := build(builtinVersion, builtinRegions, builtinAliases, builtinICV, builtinBPF, builtinHOC)
	if err != nil {
		// The builtin tables are fixed at compile time; a validation
		// failure here is a programming error.
		panic(fmt.Sprintf("builtin reference tables invalid: %v", err))
	}
	return s
}

// Load reads a snapshot from a JSON file. The returned snapshot fully
// replaces any previous one; it shares no state with it.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference snapshot: %w", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse reference snapshot: %w", err)
	}

	s, err := build(file.Version, file.Regions, file.Aliases, file.ICV, file.BPF, file.HOC)
	if err != nil {
		return nil, fmt.Errorf("invalid reference snapshot %q: %w", path, err)
	}
	return s, nil
}

func build(version string, regions []*domain.RegionProfile, aliases map[string]string,
	icv map[domain.Sex]Norm, bpf, hoc map[int]Norm) (*Snapshot, error) {

	s := &Snapshot{
		version: version,
		regions: make(map[string]*domain.RegionProfile, len(regions)),
		order:   make([]string, 0, len(regions)),
		aliases: make(map[string]string, len(aliases)),
		icv:     icv,
		bpf:     bpf,
		hoc:     hoc,
	}
	for _, rp := range regions {
		if _, dup := s.regions[rp.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate region key %q", domain.ErrInvalidReferenceData, rp.Key)
		}
		s.regions[rp.Key] = rp
		s.order = append(s.order, rp.Key)
	}
	for from, to := range aliases {
		s.aliases[normalizeFlat(from)] = to
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// validate enforces the structural invariants of the tables.
func (s *Snapshot) validate() error {
	if len(s.regions) == 0 {
		return fmt.Errorf("%w: no regions", domain.ErrInvalidReferenceData)
	}
	for _, key := range s.order {
		rp := s.regions[key]
		for _, sex := range []domain.Sex{domain.MALE, domain.FEMALE} {
			if _, ok := rp.Means[sex]; !ok {
				return fmt.Errorf("%w: region %s has no means for sex %s", domain.ErrInvalidReferenceData, key, sex)
			}
			sd, ok := rp.SD[sex]
			if !ok || sd <= 0 {
				return fmt.Errorf("%w: region %s has non-positive SD for sex %s", domain.ErrInvalidReferenceData, key, sex)
			}
		}
		if !rp.Significance.IsValid() {
			return fmt.Errorf("%w: region %s has invalid clinical significance %q", domain.ErrInvalidReferenceData, key, rp.Significance)
		}
	}
	for _, sex := range []domain.Sex{domain.MALE, domain.FEMALE} {
		norm, ok := s.icv[sex]
		if !ok || norm.SD <= 0 {
			return fmt.Errorf("%w: missing or invalid ICV norm for sex %s", domain.ErrInvalidReferenceData, sex)
		}
	}
	for decade := 20; decade <= 80; decade += 10 {
		if norm, ok := s.bpf[decade]; !ok || norm.SD <= 0 {
			return fmt.Errorf("%w: missing or invalid BPF norm for decade %d", domain.ErrInvalidReferenceData, decade)
		}
	}
	for decade := 50; decade <= 80; decade += 10 {
		if norm, ok := s.hoc[decade]; !ok || norm.SD <= 0 {
			return fmt.Errorf("%w: missing or invalid HOC norm for decade %d", domain.ErrInvalidReferenceData, decade)
		}
	}
	for from, to := range s.aliases {
		if _, ok := s.regions[to]; !ok {
			return fmt.Errorf("%w: alias %q points at unknown region %q", domain.ErrInvalidReferenceData, from, to)
		}
	}
	return nil
}

// Version returns the snapshot version string.
func (s *Snapshot) Version() string {
	return s.version
}

// Region returns the profile for a canonical region key.
func (s *Snapshot) Region(key string) (*domain.RegionProfile, bool) {
	rp, ok := s.regions[key]
	return rp, ok
}

// RegionKeys returns the canonical region keys in table order.
func (s *Snapshot) RegionKeys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// ICVNorm returns the intracranial-volume population norm for a sex.
func (s *Snapshot) ICVNorm(sex domain.Sex) Norm {
	return s.icv[sex]
}

// BPFNorm returns the brain-parenchymal-fraction norm for the decade anchor
// nearest to age, clamped to [20, 80].
func (s *Snapshot) BPFNorm(age float64) Norm {
	return s.bpf[nearestDecade(age, 20, 80)]
}

// HOCNorm returns the hippocampal-occupancy norm for the decade anchor
// nearest to age, clamped to [50, 80].
func (s *Snapshot) HOCNorm(age float64) Norm {
	return s.hoc[nearestDecade(age, 50, 80)]
}

// nearestDecade rounds age to the nearest decade anchor and clamps it into
// [lo, hi].
func nearestDecade(age float64, lo, hi int) int {
	decade := int(math.Round(age/10)) * 10
	if decade < lo {
		return lo
	}
	if decade > hi {
		return hi
	}
	return decade
}
