package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Summary describes one generated notice.
type Summary struct {
	Name        string   `json:"name"`
	Output      string   `json:"output"`
	Components  int      `json:"components"`
	Licenses    []string `json:"licenses"`
	Warnings    []string `json:"warnings,omitempty"`
	Bytes       int      `json:"bytes"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// OK reports whether the notice was written.
func (s Summary) OK() bool { return s.Error == "" }

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RenderSummary renders a table with one row per notice. Status cells are
// colored when styled is set.
func RenderSummary(summaries []Summary, styled bool) string {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)

	for _, c := range []*color.Color{ok, warn, fail} {
		if styled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"Report", "Output", "Status", "Components", "Licenses", "Size", "Fingerprint"})

	var failed, warned int

	for _, s := range summaries {
		status := ok.Sprint("ok")

		switch {
		case !s.OK():
			status = fail.Sprint("failed")
			failed++
		case len(s.Warnings) > 0:
			status = warn.Sprintf("%d warnings", len(s.Warnings))
			warned++
		}

		size := ""
		if s.OK() {
			size = humanize.Bytes(uint64(s.Bytes))
		}

		tbl.AppendRow(table.Row{s.Name, s.Output, status, s.Components, len(s.Licenses), size, s.Fingerprint})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(summaries)), "", fmt.Sprintf("%d failed, %d with warnings", failed, warned)})

	return tbl.Render() + "\n"
}

// RenderWarnings lists the warnings of every summary, one per line.
func RenderWarnings(summaries []Summary) string {
	var b strings.Builder

	for _, s := range summaries {
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "%s: %s\n", s.Name, w)
		}

		if !s.OK() {
			fmt.Fprintf(&b, "%s: %s\n", s.Name, s.Error)
		}
	}

	return b.String()
}

// WriteSummaryJSON writes summaries as indented JSON to path, or to stdout
// when path is "-".
func WriteSummaryJSON(path string, summaries []Summary, stdout io.Writer) error {
	if summaries == nil {
		summaries = []Summary{}
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary JSON: %w", err)
	}

	return WriteFile(path, append(data, '\n'), stdout)
}
