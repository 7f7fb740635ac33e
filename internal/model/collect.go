package model

import (
	"slices"
)

// findingMarkers lists why a license finding must not be surfaced. A finding
// with no markers is clean.
type findingMarkers struct {
	pathExcludes []PathExclude
	issues       []Issue
}

func (m findingMarkers) empty() bool {
	return len(m.pathExcludes) == 0 && len(m.issues) == 0
}

// CollectLicenseFindings returns, per component, the licenses found by the
// scanner and the copyright statements associated with them.
//
// Only license findings without markers are surfaced: a finding is marked
// when it lies in a file with an unresolved scanner issue, or, if
// omitExcluded is set, when it lies in a path excluded for a project.
// When omitExcluded is set, excluded projects and packages are skipped
// entirely. Components without any surfaced license are left out.
//
// A copyright statement is associated with the license findings in the same
// file that are closest to it by line. Statements in files without a license
// finding are not surfaced.
func (r *AnalysisResult) CollectLicenseFindings(omitExcluded bool) map[Identifier]LicenseFindings {
	out := map[Identifier]LicenseFindings{}
	if r == nil || r.Scanner == nil {
		return out
	}

	var excluded map[Identifier]bool
	if omitExcluded {
		excluded = r.excludedComponents()
	}

	projects := r.projectIDs()

	for _, container := range r.Scanner.Results {
		if excluded[container.ID] {
			continue
		}

		applyPathExcludes := omitExcluded && projects[container.ID]

		findings := LicenseFindings{}
		for _, result := range container.Results {
			r.collectSummary(result.Summary, applyPathExcludes, findings)
		}

		if len(findings) == 0 {
			continue
		}

		if existing, ok := out[container.ID]; ok {
			for license, copyrights := range findings {
				if existing[license] == nil {
					existing[license] = CopyrightSet{}
				}
				for statement := range copyrights {
					existing[license].Add(statement)
				}
			}
			continue
		}

		out[container.ID] = findings
	}

	return out
}

func (r *AnalysisResult) collectSummary(summary ScanSummary, applyPathExcludes bool, into LicenseFindings) {
	config := r.Repository.Config

	unresolvedByPath := map[string][]Issue{}
	for _, issue := range summary.Issues {
		if issue.Location == nil || config.Resolutions.IsResolved(issue) {
			continue
		}
		unresolvedByPath[issue.Location.Path] = append(unresolvedByPath[issue.Location.Path], issue)
	}

	licensesByPath := map[string][]LicenseFinding{}
	for _, lf := range summary.LicenseFindings {
		markers := findingMarkers{issues: unresolvedByPath[lf.Location.Path]}
		if applyPathExcludes {
			markers.pathExcludes = config.Excludes.PathExcludesFor(lf.Location.Path)
		}
		if !markers.empty() {
			continue
		}

		licensesByPath[lf.Location.Path] = append(licensesByPath[lf.Location.Path], lf)
		if into[lf.License] == nil {
			into[lf.License] = CopyrightSet{}
		}
	}

	for _, cf := range summary.CopyrightFindings {
		for _, lf := range closestLicenses(licensesByPath[cf.Location.Path], cf.Location.StartLine) {
			into[lf.License].Add(cf.Statement)
		}
	}
}

func (r *AnalysisResult) projectIDs() map[Identifier]bool {
	ids := map[Identifier]bool{}
	if r.Analyzer == nil {
		return ids
	}
	for _, p := range r.Analyzer.Result.Projects {
		ids[p.ID] = true
	}
	return ids
}

// closestLicenses returns the license findings whose location is nearest to
// line. Ties are all returned.
func closestLicenses(candidates []LicenseFinding, line int) []LicenseFinding {
	if len(candidates) == 0 {
		return nil
	}

	best := -1
	var closest []LicenseFinding
	for _, lf := range candidates {
		d := lineDistance(lf.Location, line)
		switch {
		case best == -1 || d < best:
			best = d
			closest = []LicenseFinding{lf}
		case d == best:
			closest = append(closest, lf)
		}
	}
	return closest
}

func lineDistance(loc TextLocation, line int) int {
	end := max(loc.EndLine, loc.StartLine)
	switch {
	case line < loc.StartLine:
		return loc.StartLine - line
	case line > end:
		return line - end
	default:
		return 0
	}
}

// Components lists every project and package of the analysis with its
// exclusion state, projects first, each group in identifier order.
func (r *AnalysisResult) Components() []Component {
	if r == nil || r.Analyzer == nil {
		return nil
	}

	excluded := r.excludedComponents()

	var projects, packages []Component
	for _, p := range r.Analyzer.Result.Projects {
		projects = append(projects, Component{
			ID:               p.ID,
			IsProject:        true,
			Excluded:         excluded[p.ID],
			DeclaredLicenses: slices.Clone(p.DeclaredLicenses),
		})
	}
	for _, p := range r.Analyzer.Result.Packages {
		packages = append(packages, Component{
			ID:               p.ID,
			Excluded:         excluded[p.ID],
			DeclaredLicenses: slices.Clone(p.DeclaredLicenses),
		})
	}

	byID := func(a, b Component) int { return a.ID.Compare(b.ID) }
	slices.SortFunc(projects, byID)
	slices.SortFunc(packages, byID)

	return append(projects, packages...)
}
