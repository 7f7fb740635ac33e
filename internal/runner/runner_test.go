package runner_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/notice-builder/internal/config"
	"github.com/StinkyLord/notice-builder/internal/copyright"
	"github.com/StinkyLord/notice-builder/internal/licensetext"
	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/notice"
	"github.com/StinkyLord/notice-builder/internal/runner"
)

func loadInput(t *testing.T) notice.Input {
	t.Helper()

	cfg, err := config.Load("testdata/notice.yaml")
	require.NoError(t, err)

	in, err := runner.LoadInput(cfg)
	require.NoError(t, err)

	return in
}

func footer(text string) notice.Preprocessor {
	return notice.PreprocessorFunc(func(_ context.Context, doc notice.Document, _ notice.Environment) (notice.Document, error) {
		doc.Footers = append(doc.Footers, text)

		return doc, nil
	})
}

func TestRunWritesEveryJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := loadInput(t)

	var stdout bytes.Buffer

	r := &runner.Runner{Concurrency: 2, Stdout: &stdout}
	jobs := []runner.Job{
		{Name: "plain", Output: filepath.Join(dir, "NOTICE")},
		{Name: "footer", Output: filepath.Join(dir, "NOTICE.footer"), Preprocessor: footer("Footer\n")},
		{Name: "stdout", Output: "-"},
	}

	results, err := r.Run(context.Background(), in, jobs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	plain, err := os.ReadFile(filepath.Join(dir, "NOTICE"))
	require.NoError(t, err)

	withFooter, err := os.ReadFile(filepath.Join(dir, "NOTICE.footer"))
	require.NoError(t, err)

	assert.Equal(t, string(plain)+notice.Separator+"Footer\n", string(withFooter))
	assert.Equal(t, string(plain), stdout.String())

	for i, res := range results {
		assert.Equal(t, jobs[i].Name, res.Job.Name, "results keep job order")
		assert.NotEmpty(t, res.Fingerprint)
	}

	assert.Equal(t, results[0].Fingerprint, results[2].Fingerprint)
	assert.NotEqual(t, results[0].Fingerprint, results[1].Fingerprint)

	assert.Contains(t, string(plain), "Copyright (C) 2020 App Corp\n\nAPACHE LICENSE 2.0 TEXT\n")
	assert.Contains(t, string(plain), "Copyright (C) 2019 Alice\n\nMIT License")
	assert.Equal(t, []string{"Apache-2.0", "GPL-2.0-only", "MIT"}, results[0].Outcome.Licenses)
}

// trickleWriter accepts one byte at a time, like a pipe splitting large writes.
type trickleWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *trickleWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		w.mu.Lock()
		w.buf.WriteByte(b)
		w.mu.Unlock()
		runtime.Gosched()
	}

	return len(p), nil
}

func TestRunStdoutJobsDoNotInterleave(t *testing.T) {
	t.Parallel()

	in := loadInput(t)
	footerA := strings.Repeat("A", 40) + "\n"
	footerB := strings.Repeat("B", 40) + "\n"

	var stdout trickleWriter

	r := &runner.Runner{Concurrency: 2, Stdout: &stdout}
	results, err := r.Run(context.Background(), in, []runner.Job{
		{Name: "a", Output: "-", Preprocessor: footer(footerA)},
		{Name: "b", Output: "-", Preprocessor: footer(footerB)},
	})
	require.NoError(t, err)

	var a, b bytes.Buffer

	_, err = (&runner.Runner{Stdout: &a}).Run(context.Background(), in, []runner.Job{{Output: "-", Preprocessor: footer(footerA)}})
	require.NoError(t, err)

	_, err = (&runner.Runner{Stdout: &b}).Run(context.Background(), in, []runner.Job{{Output: "-", Preprocessor: footer(footerB)}})
	require.NoError(t, err)

	got := stdout.buf.String()
	assert.Contains(t, []string{a.String() + b.String(), b.String() + a.String()}, got)
	assert.Equal(t, results[0].Outcome.Bytes+results[1].Outcome.Bytes, len(got))
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := loadInput(t)

	broken := notice.PreprocessorFunc(func(context.Context, notice.Document, notice.Environment) (notice.Document, error) {
		return notice.Document{}, errors.New("script exploded")
	})

	results, err := (&runner.Runner{}).Run(context.Background(), in, []runner.Job{
		{Name: "good", Output: filepath.Join(dir, "good")},
		{Name: "bad", Output: filepath.Join(dir, "bad"), Preprocessor: broken},
	})
	require.ErrorIs(t, err, notice.ErrPreprocessingFailed)
	assert.Contains(t, err.Error(), "bad: ")

	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)

	_, statErr := os.Stat(filepath.Join(dir, "good"))
	require.NoError(t, statErr)

	_, statErr = os.Stat(filepath.Join(dir, "bad"))
	assert.True(t, os.IsNotExist(statErr), "failed jobs write nothing")

	summary := results[1].Summary()
	assert.False(t, summary.OK())
	assert.Contains(t, summary.Error, "script exploded")
}

func TestRunMissingScanData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	results, err := (&runner.Runner{}).Run(context.Background(),
		notice.Input{Result: &model.AnalysisResult{}},
		[]runner.Job{{Name: "n", Output: filepath.Join(dir, "NOTICE")}})
	require.ErrorIs(t, err, model.ErrMissingScanData)
	require.Len(t, results, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "NOTICE")
	in := loadInput(t)

	_, err := (&runner.Runner{}).Run(context.Background(), in, []runner.Job{{Name: "n", Output: path}})
	require.NoError(t, err)

	checker := &runner.Runner{Check: true}

	results, err := checker.Run(context.Background(), in, []runner.Job{{Name: "n", Output: path}})
	require.NoError(t, err)
	assert.Empty(t, results[0].Diff)

	current, err := os.ReadFile(path)
	require.NoError(t, err)

	crlf := strings.ReplaceAll(string(current), "\n", "\r\n")
	require.NoError(t, os.WriteFile(path, []byte(crlf), 0o600))

	_, err = checker.Run(context.Background(), in, []runner.Job{{Name: "n", Output: path}})
	require.NoError(t, err, "line endings alone do not make a notice stale")

	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o600))

	results, err = checker.Run(context.Background(), in, []runner.Job{{Name: "n", Output: path}})
	require.ErrorIs(t, err, runner.ErrStale)
	assert.Contains(t, results[0].Diff, "-stale\n")
	assert.Equal(t, 1, results[0].Stats.Removed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stale\n", string(after), "check never writes")
}

func TestJobsFromConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("testdata/notice.yaml")
	require.NoError(t, err)

	jobs, err := runner.JobsFromConfig(cfg)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "plain", jobs[0].Name)
	assert.Nil(t, jobs[0].Preprocessor)
	assert.NotNil(t, jobs[1].Preprocessor)

	in, err := runner.LoadInput(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer

	in.Preprocessor = jobs[1].Preprocessor
	_, err = notice.NewReporter().Generate(context.Background(), &buf, in)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(buf.String(), notice.Separator+"Reviewed by legal.\n"))
}

func TestJobsFromConfigMissingScript(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Reports: []config.ReportConfig{{Output: "N", Script: "testdata/absent.star"}}}

	_, err := runner.JobsFromConfig(cfg)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInputRequiresResult(t *testing.T) {
	t.Parallel()

	_, err := runner.LoadInput(&config.Config{})
	require.ErrorIs(t, err, runner.ErrNoAnalysisResult)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	var deadline bool

	pp := notice.PreprocessorFunc(func(ctx context.Context, doc notice.Document, _ notice.Environment) (notice.Document, error) {
		_, deadline = ctx.Deadline()

		return doc, nil
	})

	_, err := runner.WithTimeout(pp, time.Second).Preprocess(context.Background(), notice.Document{}, notice.Environment{})
	require.NoError(t, err)
	assert.True(t, deadline)

	assert.Equal(t, notice.Preprocessor(pp), runner.WithTimeout(pp, 0))
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	result := &model.AnalysisResult{Scanner: &model.ScannerRun{Results: []model.ScanResultContainer{{
		ID: model.MustParseIdentifier("Maven:org:a:1.0"),
		Results: []model.ScanResult{{Summary: model.ScanSummary{
			LicenseFindings: []model.LicenseFinding{{
				License:  "MIT",
				Location: model.TextLocation{Path: "LICENSE", StartLine: 1, EndLine: 20},
			}},
			CopyrightFindings: []model.CopyrightFinding{{
				Statement: "Copyright 2021 Acme",
				Location:  model.TextLocation{Path: "LICENSE", StartLine: 1, EndLine: 1},
			}},
		}}},
	}}}}

	texts := licensetext.Map{"MIT": "MIT TEXT\n"}

	var plain bytes.Buffer

	_, err := runner.GenerateReport(context.Background(), &plain, result, copyright.DefaultGarbage(), nil, texts, "")
	require.NoError(t, err)
	assert.Equal(t, notice.HeaderWithFindings+notice.Separator+"Copyright (C) 2021 Acme\n\nMIT TEXT\n", plain.String())

	var scripted bytes.Buffer

	_, err = runner.GenerateReport(context.Background(), &scripted, result, nil, nil, texts,
		"def preprocess(report, ctx):\n    return {\"headers\": [\"Custom\\n\"]}\n")
	require.NoError(t, err)
	assert.Equal(t, "Custom\n"+notice.Separator+"Copyright (C) 2021 Acme\n\nMIT TEXT\n", scripted.String())

	var failed bytes.Buffer

	_, err = runner.GenerateReport(context.Background(), &failed, result, nil, nil, texts, "def preprocess(report, ctx):\n    fail(\"x\")\n")
	require.ErrorIs(t, err, notice.ErrPreprocessingFailed)
	assert.Zero(t, failed.Len())

	_, err = runner.GenerateReport(context.Background(), &failed, &model.AnalysisResult{}, nil, nil, texts, "not python")
	require.ErrorIs(t, err, model.ErrMissingScanData)
	assert.Zero(t, failed.Len())
}
