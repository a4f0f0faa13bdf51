package reference

import (
	"strings"
)

// ResolveRegion canonicalizes a raw segmentation label to a reference-table
// region profile. Resolution order, first match wins:
//
//  1. exact key match
//  2. whitespace-to-hyphen normalized match
//  3. case- and separator-insensitive substring match, in table order
//  4. fixed alias table
//
// No match returns ("", false); the caller excludes the region from scoring.
// Absence of a match is a documented outcome, never an error.
func (s *Snapshot) ResolveRegion(label string) (string, bool) {
	if label == "" {
		return "", false
	}

	if _, ok := s.regions[label]; ok {
		return label, true
	}

	hyphenated := strings.Join(strings.Fields(strings.TrimSpace(label)), "-")
	if _, ok := s.regions[hyphenated]; ok {
		return hyphenated, true
	}

	flat := normalizeFlat(label)
	if flat != "" {
		for _, key := range s.order {
			flatKey := normalizeFlat(key)
			if strings.Contains(flatKey, flat) || strings.Contains(flat, flatKey) {
				return key, true
			}
		}
	}

	if key, ok := s.aliases[flat]; ok {
		return key, true
	}

	return "", false
}

// normalizeFlat lowercases a label and strips separator characters, so that
// "inferior lateral ventricle", "Inferior-Lateral-Ventricle" and
// "inferior_lateral_ventricle" compare equal.
func normalizeFlat(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(label) {
		switch r {
		case ' ', '-', '_', '.', '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
