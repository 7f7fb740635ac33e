package notice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/StinkyLord/notice-builder/internal/copyright"
	"github.com/StinkyLord/notice-builder/internal/licenses"
	"github.com/StinkyLord/notice-builder/internal/licensetext"
	"github.com/StinkyLord/notice-builder/internal/model"
	"github.com/StinkyLord/notice-builder/internal/observability"
)

const tracerName = "github.com/StinkyLord/notice-builder/internal/notice"

// Input holds the shared, read-only inputs of one report. Preprocessor is
// optional.
type Input struct {
	Result       *model.AnalysisResult
	Garbage      *copyright.Garbage
	Licenses     *licenses.Configuration
	Texts        licensetext.Provider
	Preprocessor Preprocessor
}

// Outcome summarizes a written report.
type Outcome struct {
	Components int
	Licenses   []string
	Warnings   []Warning
	Bytes      int
}

// Reporter generates notices. A Reporter holds no per-report state and may be
// shared between goroutines.
type Reporter struct {
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *observability.ReportMetrics
	omitExcluded bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer used for pipeline spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reporter) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics records every report into m.
func WithMetrics(m *observability.ReportMetrics) Option {
	return func(r *Reporter) { r.metrics = m }
}

// WithOmitExcluded controls whether excluded components and paths are left
// out. It defaults to true.
func WithOmitExcluded(omit bool) Option {
	return func(r *Reporter) { r.omitExcluded = omit }
}

// NewReporter returns a Reporter configured by opts.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		logger:       slog.New(slog.DiscardHandler),
		tracer:       otel.Tracer(tracerName),
		omitExcluded: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Generate builds the notice for in and writes it to w. The notice is fully
// rendered before the first byte is written; on error nothing is written.
func (r *Reporter) Generate(ctx context.Context, w io.Writer, in Input) (out Outcome, err error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "notice.generate")
	defer func() {
		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
		r.metrics.RecordReport(ctx, observability.ReportStats{
			Status:       status,
			Duration:     time.Since(start),
			Components:   out.Components,
			Licenses:     len(out.Licenses),
			MissingTexts: len(out.Warnings),
		})
	}()

	rendition, components, err := r.build(ctx, in)
	if err != nil {
		return Outcome{}, err
	}

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	n, err := w.Write(rendition.Text)
	if err != nil {
		return Outcome{}, fmt.Errorf("write notice: %w", err)
	}

	span.SetAttributes(
		attribute.Int("notice.components", components),
		attribute.Int("notice.licenses", len(rendition.Licenses)),
		attribute.Int("notice.bytes", n),
	)

	r.logger.InfoContext(ctx, "notice written",
		"components", components,
		"licenses", len(rendition.Licenses),
		"warnings", len(rendition.Warnings),
		"bytes", n,
	)

	return Outcome{
		Components: components,
		Licenses:   rendition.Licenses,
		Warnings:   rendition.Warnings,
		Bytes:      n,
	}, nil
}

// Build runs the pipeline without writing anything.
func (r *Reporter) Build(ctx context.Context, in Input) (Rendition, error) {
	rendition, _, err := r.build(ctx, in)

	return rendition, err
}

func (r *Reporter) build(ctx context.Context, in Input) (Rendition, int, error) {
	if err := in.Result.RequireScanData(); err != nil {
		return Rendition{}, 0, err
	}

	doc, err := r.assemble(ctx, in)
	if err != nil {
		return Rendition{}, 0, err
	}

	if err := ctx.Err(); err != nil {
		return Rendition{}, 0, err
	}

	_, span := r.tracer.Start(ctx, "notice.merge")
	merged := Merge(doc.Findings)
	merged = MergedFindings(in.Garbage.Remove(merged))
	merged = MergedFindings(copyright.ProcessFindings(merged))
	span.SetAttributes(attribute.Int("notice.licenses", len(merged)))
	span.End()

	ctx, span = r.tracer.Start(ctx, "notice.render")
	defer span.End()

	rendition := NewRenderer(in.Texts, r.logger).Render(ctx, doc, merged)

	return rendition, len(doc.Findings), nil
}

func (r *Reporter) assemble(ctx context.Context, in Input) (Document, error) {
	_, span := r.tracer.Start(ctx, "notice.collect")
	findings := in.Result.CollectLicenseFindings(r.omitExcluded)
	span.SetAttributes(attribute.Int("notice.components", len(findings)))
	span.End()

	doc := NewDocument(findings)
	if in.Preprocessor == nil {
		return doc, nil
	}

	ctx, span = r.tracer.Start(ctx, "notice.preprocess")
	defer span.End()

	env := Environment{
		Result:   in.Result,
		Garbage:  in.Garbage,
		Licenses: in.Licenses,
		Logger:   r.logger,
	}

	out, err := preprocessSafely(ctx, in.Preprocessor, doc.Clone(), env)
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, ErrPreprocessingFailed) {
			return Document{}, err
		}

		return Document{}, fmt.Errorf("%w: %w", ErrPreprocessingFailed, err)
	}

	return out, nil
}

// preprocessSafely turns a panicking hook into an error so that one broken
// report cannot take down the others running alongside it.
func preprocessSafely(ctx context.Context, pp Preprocessor, doc Document, env Environment) (out Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = Document{}, fmt.Errorf("%w: panic: %v", ErrPreprocessingFailed, r)
		}
	}()

	return pp.Preprocess(ctx, doc, env)
}
