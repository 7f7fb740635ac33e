package copyright

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/StinkyLord/notice-builder/internal/model"
)

// canonicalPrefix is the prefix every processed statement is rendered with.
const canonicalPrefix = "Copyright (C)"

// maxYearSpan bounds a parsed year range; anything wider is treated as a
// misparse and the statement is left unprocessed.
const maxYearSpan = 100

var (
	prefixRe  = regexp.MustCompile(`(?i)^(?:copyright\s*(?:\(c\)|©)?|\(c\)|©)\s*`)
	yearRe    = regexp.MustCompile(`^((?:19|20)\d{2})(?:\s*[-–]\s*((?:19|20)\d{2}))?`)
	yearSepRe = regexp.MustCompile(`^\s*,?\s*`)
	byRe      = regexp.MustCompile(`(?i)^by\s+`)
)

// statement is a parsed "<prefix> <years> <owner>" copyright.
type statement struct {
	years []int
	owner string
}

// Normalize collapses runs of whitespace into single spaces and trims the
// statement.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Process canonicalizes a set of copyright statements:
//
//   - whitespace is normalized;
//   - statements of the form "<prefix> <years> <owner>" are grouped by owner,
//     their years merged, and rendered as "Copyright (C) <years> <owner>" with
//     consecutive years collapsed into ranges ("2017-2019, 2021");
//   - all other statements are kept with normalized whitespace.
//
// Process is idempotent and does not modify its input.
func Process(set model.CopyrightSet) model.CopyrightSet {
	out := make(model.CopyrightSet, len(set))
	byOwner := map[string]map[int]struct{}{}

	for raw := range set {
		s := Normalize(raw)
		if s == "" {
			continue
		}

		parsed, ok := parse(s)
		if !ok {
			out[s] = struct{}{}
			continue
		}

		years := byOwner[parsed.owner]
		if years == nil {
			years = map[int]struct{}{}
			byOwner[parsed.owner] = years
		}
		for _, y := range parsed.years {
			years[y] = struct{}{}
		}
	}

	for owner, years := range byOwner {
		out[render(owner, years)] = struct{}{}
	}

	return out
}

// ProcessFindings applies Process to every license's set and returns a new map.
func ProcessFindings(findings map[string]model.CopyrightSet) map[string]model.CopyrightSet {
	out := make(map[string]model.CopyrightSet, len(findings))
	for license, copyrights := range findings {
		out[license] = Process(copyrights)
	}
	return out
}

func parse(s string) (statement, bool) {
	loc := prefixRe.FindStringIndex(s)
	if loc == nil {
		return statement{}, false
	}
	rest := s[loc[1]:]

	var years []int
	for {
		m := yearRe.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		// Reject "20190" and similar: a year must not run into more digits.
		if m[1] < len(rest) && isDigit(rest[m[1]]) {
			break
		}

		start, _ := strconv.Atoi(rest[m[2]:m[3]])
		end := start
		if m[4] >= 0 {
			end, _ = strconv.Atoi(rest[m[4]:m[5]])
		}
		if end < start {
			start, end = end, start
		}
		if end-start > maxYearSpan {
			return statement{}, false
		}
		for y := start; y <= end; y++ {
			years = append(years, y)
		}

		rest = rest[m[1]:]
		rest = rest[len(yearSepRe.FindString(rest)):]
	}

	if len(years) == 0 {
		return statement{}, false
	}

	owner := trimOwner(rest)
	if owner == "" || yearRe.MatchString(owner) {
		// A year right after "by" cannot be told apart from the year list.
		return statement{}, false
	}

	return statement{years: years, owner: owner}, true
}

func trimOwner(s string) string {
	for {
		trimmed := strings.TrimLeft(s, " ,;:-–")
		trimmed = strings.TrimPrefix(trimmed, byRe.FindString(trimmed))
		if trimmed == s {
			return strings.TrimSpace(s)
		}
		s = trimmed
	}
}

func render(owner string, years map[int]struct{}) string {
	sorted := make([]int, 0, len(years))
	for y := range years {
		sorted = append(sorted, y)
	}
	slices.Sort(sorted)

	var parts []string
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, strconv.Itoa(sorted[i])+"-"+strconv.Itoa(sorted[j]))
		} else {
			parts = append(parts, strconv.Itoa(sorted[i]))
		}
		i = j + 1
	}

	return canonicalPrefix + " " + strings.Join(parts, ", ") + " " + owner
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
