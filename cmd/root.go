package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/notice-builder/internal/config"
	"github.com/StinkyLord/notice-builder/internal/licensetext"
	"github.com/StinkyLord/notice-builder/internal/notice"
	"github.com/StinkyLord/notice-builder/internal/observability"
	"github.com/StinkyLord/notice-builder/internal/output"
	"github.com/StinkyLord/notice-builder/internal/runner"
)

const toolVersion = "1.0.0"

type options struct {
	configPath      string
	analysisResult  string
	output          string
	script          string
	garbage         string
	licenseConfig   string
	textDirs        []string
	noBundledTexts  bool
	includeExcluded bool
	concurrency     int
	summaryJSON     string
	logLevel        string
	logFormat       string
	verbose         bool
}

// NewRootCommand builds the notice-builder command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "notice-builder",
		Short: "Third-party NOTICE file generator",
		Long: `notice-builder reads the result of a software composition analysis and
produces a NOTICE file listing every third-party license together with the
copyright statements found for it.

Inputs:
  • analysis result        — YAML or JSON, optionally .lz4 compressed
  • copyright garbage      — statements that must never appear in a notice
  • license configuration  — license categories, exposed to scripts
  • license texts          — custom text directories plus bundled SPDX texts
  • preprocessing scripts  — Starlark scripts that rewrite a notice before rendering`,
		Version:       toolVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: notice.yaml in . or ./config)")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the configured NOTICE files",
		Long: `Generate every configured notice concurrently. A notice is written only
when it renders completely; a failing report leaves its output untouched.

Examples:
  notice-builder generate --analysis-result scan-result.yml --output NOTICE
  notice-builder generate -i scan-result.yml.lz4 -o - --script branding.star
  notice-builder generate --config notice.yaml --summary-json summary.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, false)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the NOTICE files are up to date",
		Long: `Regenerate every configured notice in memory and compare it with the file
on disk. Differences are printed as a line diff and the command fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, true)
		},
	}

	for _, c := range []*cobra.Command{generateCmd, checkCmd} {
		f := c.Flags()
		f.StringVarP(&opts.analysisResult, "analysis-result", "i", "", "Analysis result file (.yml, .yaml, .json, optionally .lz4)")
		f.StringVarP(&opts.output, "output", "o", "", "Output file, '-' for stdout (replaces the configured reports)")
		f.StringVarP(&opts.script, "script", "s", "", "Preprocessing script for the --output report")
		f.StringVar(&opts.garbage, "copyright-garbage", "", "Copyright garbage file")
		f.StringVar(&opts.licenseConfig, "license-configuration", "", "License configuration file")
		f.StringSliceVar(&opts.textDirs, "license-texts", nil, "Directories with custom license texts, searched in order")
		f.BoolVar(&opts.noBundledTexts, "no-bundled-texts", false, "Do not fall back to the bundled license texts")
		f.BoolVar(&opts.includeExcluded, "include-excluded", false, "Keep components and paths excluded by the repository configuration")
		f.IntVarP(&opts.concurrency, "concurrency", "j", 0, "Reports generated in parallel (0 = number of CPUs)")
		f.StringVar(&opts.summaryJSON, "summary-json", "", "Write a JSON summary of all reports to this file ('-' for stdout)")
		f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
		f.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
		f.BoolVarP(&opts.verbose, "verbose", "v", false, "Shortcut for --log-level debug")
	}

	textsCmd := &cobra.Command{
		Use:   "texts",
		Short: "List the bundled license texts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, id := range licensetext.BundledIDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}

			return nil
		},
	}

	rootCmd.AddCommand(generateCmd, checkCmd, textsCmd)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func applyOverrides(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("analysis-result") {
		cfg.AnalysisResult = opts.analysisResult
	}

	if flags.Changed("output") {
		cfg.Reports = []config.ReportConfig{{Output: opts.output, Script: opts.script}}
	} else if flags.Changed("script") {
		for i := range cfg.Reports {
			cfg.Reports[i].Script = opts.script
		}
	}

	if flags.Changed("copyright-garbage") {
		cfg.CopyrightGarbage = opts.garbage
	}

	if flags.Changed("license-configuration") {
		cfg.LicenseConfiguration = opts.licenseConfig
	}

	if flags.Changed("license-texts") {
		cfg.LicenseTexts.Directories = opts.textDirs
	}

	if opts.noBundledTexts {
		cfg.LicenseTexts.Bundled = false
	}

	if opts.includeExcluded {
		cfg.OmitExcluded = false
	}

	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
}

func run(cmd *cobra.Command, opts *options, check bool) (err error) {
	ctx := cmd.Context()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	applyOverrides(cmd, opts, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	if cfg.Telemetry.ServiceName != "" {
		obsCfg.ServiceName = cfg.Telemetry.ServiceName
	}

	obsCfg.ServiceVersion = toolVersion
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"

	providers, err := observability.InitWithWriter(obsCfg, stderr)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		if shutdownErr := providers.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
			err = fmt.Errorf("flush telemetry: %w", shutdownErr)
		}
	}()

	metrics, err := observability.NewReportMetrics(providers.Meter)
	if err != nil {
		return err
	}

	in, err := runner.LoadInput(cfg)
	if err != nil {
		return err
	}

	jobs, err := runner.JobsFromConfig(cfg)
	if err != nil {
		return err
	}

	r := &runner.Runner{
		Reporter: notice.NewReporter(
			notice.WithLogger(providers.Logger),
			notice.WithTracer(providers.Tracer),
			notice.WithMetrics(metrics),
			notice.WithOmitExcluded(cfg.OmitExcluded),
		),
		Logger:      providers.Logger,
		Concurrency: cfg.Concurrency,
		Check:       check,
		Stdout:      stdout,
	}

	results, runErr := r.Run(ctx, in, jobs)

	summaries := make([]output.Summary, len(results))
	for i, res := range results {
		summaries[i] = res.Summary()

		if check && res.Diff != "" {
			fmt.Fprintf(stdout, "--- %s (on disk)\n+++ %s (generated)\n%s", res.Job.Output, res.Job.Output, res.Diff)
		}
	}

	reportSummary(stderr, summaries)

	if opts.summaryJSON != "" {
		if err := output.WriteSummaryJSON(opts.summaryJSON, summaries, stdout); err != nil {
			return err
		}
	}

	return runErr
}

func reportSummary(w io.Writer, summaries []output.Summary) {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = output.IsTerminal(f)
	}

	fmt.Fprint(w, output.RenderSummary(summaries, styled))
	fmt.Fprint(w, output.RenderWarnings(summaries))
}
