package output

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineStats counts changed lines between two texts.
type LineStats struct {
	Added   int
	Removed int
}

// Diff compares want with got line by line and returns a unified-style
// listing of the changes. The listing is empty when the texts are equal.
func Diff(want, got string) (string, LineStats) {
	if want == got {
		return "", LineStats{}
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	var (
		b     strings.Builder
		stats LineStats
	)

	for _, d := range diffs {
		var prefix string

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
			prefix = " "
		}

		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				stats.Added++
			case diffmatchpatch.DiffDelete:
				stats.Removed++
			case diffmatchpatch.DiffEqual:
			}

			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String(), stats
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}

	return strings.Split(s, "\n")
}
