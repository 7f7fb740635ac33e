package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReportsTotal    = "notice.reports.total"
	metricReportDuration  = "notice.report.duration.seconds"
	metricLicensesTotal   = "notice.licenses.rendered.total"
	metricMissingTexts    = "notice.licenses.text_missing.total"
	metricComponentsTotal = "notice.components.total"

	attrStatus = "status"

	// StatusOK marks a report that was written.
	StatusOK = "ok"
	// StatusError marks a report that failed before output.
	StatusError = "error"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// ReportMetrics holds instruments for notice generation.
type ReportMetrics struct {
	reports    metric.Int64Counter
	duration   metric.Float64Histogram
	licenses   metric.Int64Counter
	missing    metric.Int64Counter
	components metric.Int64Counter
}

// ReportStats describes one report generation.
type ReportStats struct {
	Status       string
	Duration     time.Duration
	Components   int
	Licenses     int
	MissingTexts int
}

// NewReportMetrics creates the report instruments from mt.
func NewReportMetrics(mt metric.Meter) (*ReportMetrics, error) {
	reports, err := mt.Int64Counter(metricReportsTotal,
		metric.WithDescription("Notice reports generated, by status"),
		metric.WithUnit("{report}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReportsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricReportDuration,
		metric.WithDescription("Notice generation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricReportDuration, err)
	}

	licenses, err := mt.Int64Counter(metricLicensesTotal,
		metric.WithDescription("License sections written"),
		metric.WithUnit("{license}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLicensesTotal, err)
	}

	missing, err := mt.Int64Counter(metricMissingTexts,
		metric.WithDescription("Licenses omitted for lack of a license text"),
		metric.WithUnit("{license}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMissingTexts, err)
	}

	components, err := mt.Int64Counter(metricComponentsTotal,
		metric.WithDescription("Components contributing findings"),
		metric.WithUnit("{component}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricComponentsTotal, err)
	}

	return &ReportMetrics{
		reports:    reports,
		duration:   duration,
		licenses:   licenses,
		missing:    missing,
		components: components,
	}, nil
}

// RecordReport records one report. Safe to call on a nil receiver.
func (rm *ReportMetrics) RecordReport(ctx context.Context, stats ReportStats) {
	if rm == nil {
		return
	}

	status := metric.WithAttributes(attribute.String(attrStatus, stats.Status))
	rm.reports.Add(ctx, 1, status)
	rm.duration.Record(ctx, stats.Duration.Seconds(), status)

	if stats.Status != StatusOK {
		return
	}

	rm.components.Add(ctx, int64(stats.Components))
	rm.licenses.Add(ctx, int64(stats.Licenses))
	rm.missing.Add(ctx, int64(stats.MissingTexts))
}
