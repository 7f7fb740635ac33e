// Package runner generates several notices concurrently from the same
// inputs and writes or checks their outputs.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/StinkyLord/notice-builder/internal/notice"
	"github.com/StinkyLord/notice-builder/internal/output"
)

// ErrStale is returned by check runs when an existing notice differs from
// the regenerated one.
var ErrStale = errors.New("notice is out of date")

// Job is one notice to produce. Preprocessor is optional.
type Job struct {
	Name         string
	Output       string
	Preprocessor notice.Preprocessor
}

// JobResult is the outcome of one job. Err is set when the job failed; a
// failed job writes nothing.
type JobResult struct {
	Job         Job
	Outcome     notice.Outcome
	Fingerprint string
	// Diff is set in check mode when the existing output differs.
	Diff  string
	Stats output.LineStats
	Err   error
}

// Summary converts r for reporting.
func (r JobResult) Summary() output.Summary {
	s := output.Summary{
		Name:        r.Job.Name,
		Output:      r.Job.Output,
		Components:  r.Outcome.Components,
		Licenses:    r.Outcome.Licenses,
		Bytes:       r.Outcome.Bytes,
		Fingerprint: r.Fingerprint,
	}

	for _, w := range r.Outcome.Warnings {
		s.Warnings = append(s.Warnings, w.String())
	}

	if r.Err != nil {
		s.Error = r.Err.Error()
	}

	return s
}

// Runner runs jobs over shared, read-only inputs.
type Runner struct {
	Reporter *notice.Reporter
	Logger   *slog.Logger

	// Concurrency bounds parallel jobs. Zero means GOMAXPROCS.
	Concurrency int

	// Check compares outputs with the files on disk instead of writing.
	Check bool

	// Stdout receives outputs named "-". Notices written there never
	// interleave.
	Stdout io.Writer

	stdoutMu sync.Mutex
}

// Run executes jobs concurrently and returns their results in job order,
// together with the joined errors of all failed jobs.
func (r *Runner) Run(ctx context.Context, in notice.Input, jobs []Job) ([]JobResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	type indexed struct {
		idx int
		res JobResult
	}

	resultCh := make(chan indexed, len(jobs))
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)

		go func(idx int, job Job) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			logger.DebugContext(ctx, "running report", "report", job.Name, "output", job.Output)
			resultCh <- indexed{idx: idx, res: r.runJob(ctx, in, job)}
		}(i, job)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]JobResult, len(jobs))

	var errs []error

	for ir := range resultCh {
		results[ir.idx] = ir.res

		if ir.res.Err != nil {
			logger.ErrorContext(ctx, "report failed", "report", ir.res.Job.Name, "error", ir.res.Err)
			errs = append(errs, fmt.Errorf("%s: %w", ir.res.Job.Name, ir.res.Err))
		}
	}

	return results, errors.Join(errs...)
}

func (r *Runner) runJob(ctx context.Context, in notice.Input, job Job) JobResult {
	res := JobResult{Job: job}

	reporter := r.Reporter
	if reporter == nil {
		reporter = notice.NewReporter()
	}

	in.Preprocessor = job.Preprocessor

	var buf bytes.Buffer

	outcome, err := reporter.Generate(ctx, &buf, in)
	if err != nil {
		res.Err = err

		return res
	}

	res.Outcome = outcome
	res.Fingerprint = output.Fingerprint(buf.Bytes())

	if r.Check {
		res.Err = r.check(job, buf.Bytes(), &res)

		return res
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	if job.Output == output.Stdout {
		r.stdoutMu.Lock()
		defer r.stdoutMu.Unlock()
	}

	if err := output.WriteFile(job.Output, buf.Bytes(), stdout); err != nil {
		res.Err = err
	}

	return res
}

func (r *Runner) check(job Job, generated []byte, res *JobResult) error {
	if job.Output == output.Stdout {
		return nil
	}

	existing, err := os.ReadFile(job.Output)
	if err != nil {
		return fmt.Errorf("read %s: %w", job.Output, err)
	}

	res.Diff, res.Stats = output.Diff(string(notice.NormalizeLineEndings(existing)), string(generated))
	if res.Diff != "" {
		return fmt.Errorf("%w: %s (+%d -%d lines)", ErrStale, job.Output, res.Stats.Added, res.Stats.Removed)
	}

	return nil
}
