package model

import (
	"maps"
	"slices"
)

// CopyrightSet is a set of copyright statements.
type CopyrightSet map[string]struct{}

// NewCopyrightSet returns a set holding the given statements.
func NewCopyrightSet(statements ...string) CopyrightSet {
	set := make(CopyrightSet, len(statements))
	for _, s := range statements {
		set[s] = struct{}{}
	}
	return set
}

// Add inserts statements into the set.
func (s CopyrightSet) Add(statements ...string) {
	for _, st := range statements {
		s[st] = struct{}{}
	}
}

// Contains reports whether the statement is in the set.
func (s CopyrightSet) Contains(statement string) bool {
	_, ok := s[statement]
	return ok
}

// Sorted returns the statements in lexicographic order.
func (s CopyrightSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy of the set. A nil set clones to an empty set.
func (s CopyrightSet) Clone() CopyrightSet {
	out := make(CopyrightSet, len(s))
	maps.Copy(out, s)
	return out
}

// LicenseFindings maps a license identifier to the copyright statements found
// under that license, for a single component.
type LicenseFindings map[string]CopyrightSet

// Licenses returns the license identifiers in lexicographic order.
func (f LicenseFindings) Licenses() []string {
	return slices.Sorted(maps.Keys(f))
}

// Clone returns a deep copy; the copy shares no sets with the original.
func (f LicenseFindings) Clone() LicenseFindings {
	out := make(LicenseFindings, len(f))
	for license, copyrights := range f {
		out[license] = copyrights.Clone()
	}
	return out
}

// SortedIdentifiers returns the keys of a per-component findings map in
// identifier order.
func SortedIdentifiers(findings map[Identifier]LicenseFindings) []Identifier {
	return slices.SortedFunc(maps.Keys(findings), Identifier.Compare)
}
