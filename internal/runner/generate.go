package runner

import (
	"context"
	"io"

	"github.com/StinkyLord/notice-builder/internal/copyright"
	"github.com/StinkyLord/notice-builder/internal/licenses"
	"github.com/StinkyLord/notice-builder/internal/licensetext"
	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/notice"
	"github.com/StinkyLord/notice-builder/internal/preprocess"
)

// GenerateReport renders the notice for result into w. script is optional
// Starlark source for a preprocessing hook; an empty script skips the hook.
// Nothing is written unless the whole notice renders.
func GenerateReport(
	ctx context.Context,
	w io.Writer,
	result *model.AnalysisResult,
	garbage *copyright.Garbage,
	licenseCfg *licenses.Configuration,
	texts licensetext.Provider,
	script string,
) (notice.Outcome, error) {
	in := notice.Input{
		Result:   result,
		Garbage:  garbage,
		Licenses: licenseCfg,
		Texts:    texts,
	}

	if script != "" {
		// Missing scan data is reported before any script problem.
		if err := result.RequireScanData(); err != nil {
			return notice.Outcome{}, err
		}

		pp, err := preprocess.Compile("preprocess.star", script)
		if err != nil {
			return notice.Outcome{}, err
		}

		in.Preprocessor = pp
	}

	return notice.NewReporter().Generate(ctx, w, in)
}
