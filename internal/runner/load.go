package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/StinkyLord/notice-builder/internal/config"
	"github.com/StinkyLord/notice-builder/internal/copyright"
	"github.com/StinkyLord/notice-builder/internal/licenses"
	"github.com/StinkyLord/notice-builder/internal/licensetext"
	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/notice"
	"github.com/StinkyLord/notice-builder/internal/preprocess"
)

// ErrNoAnalysisResult is returned when no analysis result path is configured.
var ErrNoAnalysisResult = errors.New("no analysis result configured")

// LoadInput reads the shared report inputs named by cfg.
func LoadInput(cfg *config.Config) (notice.Input, error) {
	if cfg.AnalysisResult == "" {
		return notice.Input{}, ErrNoAnalysisResult
	}

	result, err := model.LoadAnalysisResult(cfg.AnalysisResult)
	if err != nil {
		return notice.Input{}, err
	}

	var garbage *copyright.Garbage
	if cfg.DefaultGarbage {
		garbage = copyright.DefaultGarbage()
	}

	if cfg.CopyrightGarbage != "" {
		fromFile, err := copyright.LoadGarbage(cfg.CopyrightGarbage)
		if err != nil {
			return notice.Input{}, err
		}

		garbage = garbage.Union(fromFile)
	}

	licenseCfg := &licenses.Configuration{}
	if cfg.LicenseConfiguration != "" {
		licenseCfg, err = licenses.Load(cfg.LicenseConfiguration)
		if err != nil {
			return notice.Input{}, err
		}
	}

	return notice.Input{
		Result:   result,
		Garbage:  garbage,
		Licenses: licenseCfg,
		Texts:    licensetext.NewDefault(cfg.LicenseTexts.Directories, cfg.LicenseTexts.Bundled),
	}, nil
}

// JobsFromConfig compiles the scripts of the configured reports.
func JobsFromConfig(cfg *config.Config) ([]Job, error) {
	jobs := make([]Job, 0, len(cfg.Reports))

	for _, rc := range cfg.Reports {
		job := Job{Name: rc.ReportName(), Output: rc.Output}

		if rc.Script != "" {
			src, err := os.ReadFile(rc.Script)
			if err != nil {
				return nil, fmt.Errorf("read script for %s: %w", job.Name, err)
			}

			script, err := preprocess.Compile(rc.Script, string(src), preprocess.WithMaxSteps(cfg.Preprocessor.MaxSteps))
			if err != nil {
				return nil, err
			}

			job.Preprocessor = WithTimeout(script, cfg.Preprocessor.Timeout)
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// WithTimeout bounds each call of pp by d. A zero d returns pp unchanged.
func WithTimeout(pp notice.Preprocessor, d time.Duration) notice.Preprocessor {
	if d <= 0 {
		return pp
	}

	return notice.PreprocessorFunc(func(ctx context.Context, doc notice.Document, env notice.Environment) (notice.Document, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return pp.Preprocess(ctx, doc, env)
	})
}
