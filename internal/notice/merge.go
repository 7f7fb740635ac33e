package notice

import (
	"maps"
	"slices"

	"github.com/StinkyLord/notice-builder/internal/model"
)

// MergedFindings maps each license to the union of its copyright statements
// across all components.
type MergedFindings map[string]model.CopyrightSet

// Licenses returns the license ids in lexicographic order.
func (m MergedFindings) Licenses() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a deep copy of m.
func (m MergedFindings) Clone() MergedFindings {
	out := make(MergedFindings, len(m))
	for license, copyrights := range m {
		out[license] = copyrights.Clone()
	}

	return out
}

// Fold returns a new value holding acc unioned with one component's
// findings. Neither argument is modified.
func Fold(acc MergedFindings, findings model.LicenseFindings) MergedFindings {
	out := acc.Clone()
	out.union(findings)

	return out
}

// Merge folds the findings of every component into one value, visiting
// components in identifier order. The result shares no sets with the input. An empty input yields an
// empty, non-nil map.
func Merge(findings map[model.Identifier]model.LicenseFindings) MergedFindings {
	out := MergedFindings{}
	for _, id := range model.SortedIdentifiers(findings) {
		out = Fold(out, findings[id])
	}

	return out
}

func (m MergedFindings) union(findings model.LicenseFindings) {
	for license, copyrights := range findings {
		set, ok := m[license]
		if !ok {
			set = make(model.CopyrightSet, len(copyrights))
			m[license] = set
		}

		for statement := range copyrights {
			set[statement] = struct{}{}
		}
	}
}
