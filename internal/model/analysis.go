package model

import "errors"

// ErrMissingScanData is returned when an analysis result carries no scanner
// run. Report generation cannot proceed without scan findings.
var ErrMissingScanData = errors.New("the analysis result does not contain a scan result")

// AnalysisResult is the output of the upstream analysis and scan pipeline.
// Only the parts the notice engine reads are modelled; unknown fields are
// ignored when decoding.
type AnalysisResult struct {
	Repository Repository   `yaml:"repository" json:"repository"`
	Analyzer   *AnalyzerRun `yaml:"analyzer,omitempty" json:"analyzer,omitempty"`
	Scanner    *ScannerRun  `yaml:"scanner,omitempty" json:"scanner,omitempty"`
}

// Repository describes the scanned source repository and its configuration.
type Repository struct {
	VCSURL string                  `yaml:"vcs_url,omitempty" json:"vcs_url,omitempty"`
	Config RepositoryConfiguration `yaml:"config" json:"config"`
}

// RepositoryConfiguration holds the user-maintained exclude and resolution rules.
type RepositoryConfiguration struct {
	Excludes    Excludes    `yaml:"excludes" json:"excludes"`
	Resolutions Resolutions `yaml:"resolutions" json:"resolutions"`
}

// AnalyzerRun holds the dependency analysis.
type AnalyzerRun struct {
	Result AnalyzerResult `yaml:"result" json:"result"`
}

// AnalyzerResult lists the projects found in the repository and the packages
// they depend on.
type AnalyzerResult struct {
	Projects []Project `yaml:"projects" json:"projects"`
	Packages []Package `yaml:"packages" json:"packages"`
}

// Project is a component defined by a build file inside the repository.
type Project struct {
	ID                 Identifier `yaml:"id" json:"id"`
	DefinitionFilePath string     `yaml:"definition_file_path" json:"definition_file_path"`
	DeclaredLicenses   []string   `yaml:"declared_licenses,omitempty" json:"declared_licenses,omitempty"`
	Scopes             []Scope    `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// Package is a third-party dependency of one or more projects.
type Package struct {
	ID               Identifier `yaml:"id" json:"id"`
	DeclaredLicenses []string   `yaml:"declared_licenses,omitempty" json:"declared_licenses,omitempty"`
	Description      string     `yaml:"description,omitempty" json:"description,omitempty"`
	Homepage         string     `yaml:"homepage_url,omitempty" json:"homepage_url,omitempty"`
}

// Scope groups the dependencies of a project by usage, e.g. "compile" or "test".
type Scope struct {
	Name         string             `yaml:"name" json:"name"`
	Dependencies []PackageReference `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// PackageReference is a node in a scope's dependency tree.
type PackageReference struct {
	ID           Identifier         `yaml:"id" json:"id"`
	Dependencies []PackageReference `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// ScannerRun holds the scan results of all scanned components.
type ScannerRun struct {
	Results []ScanResultContainer `yaml:"results" json:"results"`
}

// ScanResultContainer groups the scan results of one component.
type ScanResultContainer struct {
	ID      Identifier   `yaml:"id" json:"id"`
	Results []ScanResult `yaml:"results" json:"results"`
}

// ScanResult is the outcome of one scanner run on one component's sources.
type ScanResult struct {
	Scanner string      `yaml:"scanner,omitempty" json:"scanner,omitempty"`
	Summary ScanSummary `yaml:"summary" json:"summary"`
}

// ScanSummary holds the findings of a scan.
type ScanSummary struct {
	LicenseFindings   []LicenseFinding   `yaml:"license_findings,omitempty" json:"license_findings,omitempty"`
	CopyrightFindings []CopyrightFinding `yaml:"copyright_findings,omitempty" json:"copyright_findings,omitempty"`
	Issues            []Issue            `yaml:"issues,omitempty" json:"issues,omitempty"`
}

// TextLocation is a line range in a file, relative to the scanned root.
type TextLocation struct {
	Path      string `yaml:"path" json:"path"`
	StartLine int    `yaml:"start_line" json:"start_line"`
	EndLine   int    `yaml:"end_line" json:"end_line"`
}

// LicenseFinding is a license detected at a location.
type LicenseFinding struct {
	License  string       `yaml:"license" json:"license"`
	Location TextLocation `yaml:"location" json:"location"`
}

// CopyrightFinding is a copyright statement detected at a location.
type CopyrightFinding struct {
	Statement string       `yaml:"statement" json:"statement"`
	Location  TextLocation `yaml:"location" json:"location"`
}

// Issue is a problem the scanner reported. Issues with a location mark the
// findings in that file as unreliable until they are resolved.
type Issue struct {
	Source   string        `yaml:"source,omitempty" json:"source,omitempty"`
	Message  string        `yaml:"message" json:"message"`
	Severity string        `yaml:"severity,omitempty" json:"severity,omitempty"`
	Location *TextLocation `yaml:"location,omitempty" json:"location,omitempty"`
}

// RequireScanData returns ErrMissingScanData if the result has no scanner run.
func (r *AnalysisResult) RequireScanData() error {
	if r == nil || r.Scanner == nil {
		return ErrMissingScanData
	}
	return nil
}

// Component summarizes one project or package for consumers that only need
// identity and exclusion state.
type Component struct {
	ID               Identifier
	IsProject        bool
	Excluded         bool
	DeclaredLicenses []string
}
