package notice_test

import (
	"errors"
	"slices"

	"github.com/StinkyLord/notice-builder/internal/model"
)

// findings builds per-component findings from id -> license -> statements.
func findings(in map[string]map[string][]string) map[model.Identifier]model.LicenseFindings {
	out := make(map[model.Identifier]model.LicenseFindings, len(in))
	for id, licenses := range in {
		lf := model.LicenseFindings{}
		for license, statements := range licenses {
			lf[license] = model.NewCopyrightSet(statements...)
		}

		out[model.MustParseIdentifier(id)] = lf
	}

	return out
}

// scanResult builds an analysis result whose scanner reports exactly the
// given findings. Each license sits in its own file with its copyrights.
func scanResult(in map[string]map[string][]string) *model.AnalysisResult {
	ids := make([]string, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	run := &model.ScannerRun{}

	for _, id := range ids {
		var summary model.ScanSummary

		for license, statements := range in[id] {
			path := license + ".txt"
			summary.LicenseFindings = append(summary.LicenseFindings, model.LicenseFinding{
				License:  license,
				Location: model.TextLocation{Path: path, StartLine: 1, EndLine: 1},
			})

			for _, s := range statements {
				summary.CopyrightFindings = append(summary.CopyrightFindings, model.CopyrightFinding{
					Statement: s,
					Location:  model.TextLocation{Path: path, StartLine: 2, EndLine: 2},
				})
			}
		}

		run.Results = append(run.Results, model.ScanResultContainer{
			ID:      model.MustParseIdentifier(id),
			Results: []model.ScanResult{{Scanner: "test", Summary: summary}},
		})
	}

	return &model.AnalysisResult{Scanner: run}
}

var endToEnd = map[string]map[string][]string{
	"Maven:org:a:1.0": {"Apache-2.0": {"Co X"}},
	"Maven:org:b:2.0": {"Apache-2.0": {"Co Y"}, "MIT": {"Co X"}},
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }
