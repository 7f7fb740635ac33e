// Package copyright filters and canonicalizes copyright statements before
// they are written to a notice.
package copyright

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/notice-builder/internal/model"
)

// ErrInvalidPattern is returned when a garbage pattern is not a valid
// regular expression.
var ErrInvalidPattern = errors.New("invalid copyright garbage pattern")

// Garbage is a set of copyright statements known to be noise: boilerplate,
// template placeholders, or detector false positives.
//
// Items match statements exactly. Patterns are regular expressions that must
// match the whole statement.
type Garbage struct {
	items    map[string]struct{}
	patterns []*regexp.Regexp
}

// garbageFile is the on-disk form of Garbage.
type garbageFile struct {
	Items    []string `yaml:"items"`
	Patterns []string `yaml:"patterns"`
}

// NewGarbage builds a garbage set from exact items and patterns.
func NewGarbage(items, patterns []string) (*Garbage, error) {
	g := &Garbage{items: make(map[string]struct{}, len(items))}
	for _, item := range items {
		g.items[item] = struct{}{}
	}

	for _, p := range patterns {
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
		g.patterns = append(g.patterns, re)
	}

	return g, nil
}

// LoadGarbage reads a garbage file:
//
//	items:
//	  - "Copyright (c) <year> <owner>"
//	patterns:
//	  - "Copyright \\(C\\) [0-9]{4} by the authors"
func LoadGarbage(path string) (*Garbage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open copyright garbage: %w", err)
	}
	defer f.Close()

	g, err := DecodeGarbage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// DecodeGarbage decodes the YAML garbage format from r. An empty document
// yields an empty set.
func DecodeGarbage(r io.Reader) (*Garbage, error) {
	var file garbageFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	return NewGarbage(file.Items, file.Patterns)
}

// Contains reports whether the statement is garbage. A nil set contains nothing.
func (g *Garbage) Contains(statement string) bool {
	if g == nil {
		return false
	}
	if _, ok := g.items[statement]; ok {
		return true
	}
	for _, re := range g.patterns {
		if re.MatchString(statement) {
			return true
		}
	}
	return false
}

// Items returns the exact-match entries in lexicographic order.
func (g *Garbage) Items() []string {
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.items))
	for item := range g.items {
		out = append(out, item)
	}
	slices.Sort(out)
	return out
}

// Patterns returns the pattern entries in declaration order, without the
// anchors added at construction.
func (g *Garbage) Patterns() []string {
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.patterns))
	for _, re := range g.patterns {
		src := re.String()
		out = append(out, src[len("^(?:"):len(src)-len(")$")])
	}
	return out
}

// Union returns a set containing the entries of both g and other.
func (g *Garbage) Union(other *Garbage) *Garbage {
	out := &Garbage{items: map[string]struct{}{}}
	for _, src := range []*Garbage{g, other} {
		if src == nil {
			continue
		}
		for item := range src.items {
			out.items[item] = struct{}{}
		}
		out.patterns = append(out.patterns, src.patterns...)
	}
	return out
}

// Remove returns a copy of findings with every garbage statement removed
// from every license's set. License entries are kept even when their set
// becomes empty. The input is not modified.
func (g *Garbage) Remove(findings map[string]model.CopyrightSet) map[string]model.CopyrightSet {
	out := make(map[string]model.CopyrightSet, len(findings))
	for license, copyrights := range findings {
		kept := make(model.CopyrightSet, len(copyrights))
		for statement := range copyrights {
			if !g.Contains(statement) {
				kept[statement] = struct{}{}
			}
		}
		out[license] = kept
	}
	return out
}
