package model

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Excludes lists the parts of a repository that are not distributed and
// therefore do not contribute to the notice.
type Excludes struct {
	Paths  []PathExclude  `yaml:"paths,omitempty" json:"paths,omitempty"`
	Scopes []ScopeExclude `yaml:"scopes,omitempty" json:"scopes,omitempty"`
}

// PathExclude excludes files matching a glob pattern. "**" matches across
// directory boundaries.
type PathExclude struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Reason  string `yaml:"reason" json:"reason"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// Matches reports whether path is covered by the exclude. Malformed patterns
// never match.
func (e PathExclude) Matches(path string) bool {
	ok, err := doublestar.Match(e.Pattern, path)
	return err == nil && ok
}

// ScopeExclude excludes dependency scopes whose name fully matches a regular
// expression.
type ScopeExclude struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Reason  string `yaml:"reason" json:"reason"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// Matches reports whether the scope name is covered by the exclude.
func (e ScopeExclude) Matches(scope string) bool {
	re, err := regexp.Compile("^(?:" + e.Pattern + ")$")
	return err == nil && re.MatchString(scope)
}

// Resolutions marks known issues as resolved so they stop suppressing findings.
type Resolutions struct {
	Issues []IssueResolution `yaml:"issues,omitempty" json:"issues,omitempty"`
}

// IssueResolution resolves every issue whose message fully matches Message,
// interpreted as a regular expression.
type IssueResolution struct {
	Message string `yaml:"message" json:"message"`
	Reason  string `yaml:"reason" json:"reason"`
	Comment string `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// Resolves reports whether the resolution applies to the issue.
func (r IssueResolution) Resolves(issue Issue) bool {
	re, err := regexp.Compile("^(?:" + r.Message + ")$")
	return err == nil && re.MatchString(issue.Message)
}

// PathExcludesFor returns the path excludes matching path.
func (e Excludes) PathExcludesFor(path string) []PathExclude {
	var matched []PathExclude
	for _, pe := range e.Paths {
		if pe.Matches(path) {
			matched = append(matched, pe)
		}
	}
	return matched
}

// IsScopeExcluded reports whether any scope exclude matches the scope name.
func (e Excludes) IsScopeExcluded(scope string) bool {
	for _, se := range e.Scopes {
		if se.Matches(scope) {
			return true
		}
	}
	return false
}

// IsResolved reports whether any issue resolution applies to the issue.
func (r Resolutions) IsResolved(issue Issue) bool {
	for _, res := range r.Issues {
		if res.Resolves(issue) {
			return true
		}
	}
	return false
}
