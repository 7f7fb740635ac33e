package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/notice-builder/cmd"
	"github.com/StinkyLord/notice-builder/internal/notice"
	"github.com/StinkyLord/notice-builder/internal/runner"
)

const (
	analysisResult = "../internal/model/testdata/analysis-result.yml"
	textsDir       = "../internal/runner/testdata/texts"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := cmd.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func TestGenerateAndCheck(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "NOTICE")
	common := []string{"-i", analysisResult, "-o", path, "--license-texts", textsDir}

	_, stderr, err := execute(t, append([]string{"generate"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "NOTICE")
	assert.Contains(t, stderr, "0 failed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), notice.HeaderWithFindings))
	assert.Contains(t, string(data), "APACHE LICENSE 2.0 TEXT")

	_, _, err = execute(t, append([]string{"check"}, common...)...)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("outdated\n"), 0o600))

	stdout, _, err := execute(t, append([]string{"check"}, common...)...)
	require.ErrorIs(t, err, runner.ErrStale)
	assert.Contains(t, stdout, "-outdated\n")
	assert.Contains(t, stdout, "(generated)")
}

func TestGenerateToStdout(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "generate", "-i", analysisResult, "-o", "-", "--license-texts", textsDir,
		"--log-format", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, notice.HeaderWithFindings))
}

func TestGenerateIncludeExcluded(t *testing.T) {
	t.Parallel()

	omitted, _, err := execute(t, "generate", "-i", analysisResult, "-o", "-", "--license-texts", textsDir)
	require.NoError(t, err)

	all, stderr, err := execute(t, "generate", "-i", analysisResult, "-o", "-", "--license-texts", textsDir,
		"--include-excluded")
	require.NoError(t, err)

	assert.Greater(t, len(all), len(omitted))
	assert.Contains(t, stderr, "EPL-1.0", "missing texts are reported as warnings")
}

func TestGenerateWithFailingScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, "fail.star")
	require.NoError(t, os.WriteFile(script, []byte("def preprocess(report, ctx):\n    fail(\"rejected\")\n"), 0o600))

	out := filepath.Join(dir, "NOTICE")

	_, stderr, err := execute(t, "generate", "-i", analysisResult, "-o", out, "--script", script)
	require.ErrorIs(t, err, notice.ErrPreprocessingFailed)
	assert.Contains(t, stderr, "1 failed")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSummaryJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	summary := filepath.Join(dir, "summary.json")

	_, _, err := execute(t, "generate", "-i", analysisResult, "-o", filepath.Join(dir, "NOTICE"),
		"--summary-json", summary)
	require.NoError(t, err)

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fingerprint"`)
}

func TestGenerateWithoutAnalysisResult(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "generate", "-o", "-")
	require.ErrorIs(t, err, runner.ErrNoAnalysisResult)
}

func TestTexts(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "texts")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(stdout, "\n"), "MIT")
}
