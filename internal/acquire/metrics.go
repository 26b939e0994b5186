package acquire

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/repotext/internal/acquire"

// metrics holds acquisition instruments. Without a metric SDK installed
// every instrument is a no-op, so recording is always safe.
type metrics struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	files    metric.Int64Histogram
}

func newMetrics(logger *zap.Logger) *metrics {
	meter := otel.Meter(instrumentationName)
	m := &metrics{}
	var err error

	m.total, err = meter.Int64Counter(
		"repotext.acquire.total",
		metric.WithDescription("Completed acquisitions labeled by outcome (ok, empty) and winning strategy (tree, scrape, clone, none)."),
		metric.WithUnit("{acquisition}"),
	)
	if err != nil {
		logger.Warn("failed to create acquisition counter", zap.Error(err))
	}

	m.duration, err = meter.Float64Histogram(
		"repotext.acquire.duration_seconds",
		metric.WithDescription("End-to-end acquisition duration in seconds."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.files, err = meter.Int64Histogram(
		"repotext.acquire.files",
		metric.WithDescription("Files with text content per completed acquisition."),
		metric.WithUnit("{file}"),
		metric.WithExplicitBucketBoundaries(1, 10, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		logger.Warn("failed to create file histogram", zap.Error(err))
	}

	return m
}

func (m *metrics) observe(ctx context.Context, outcome, strategy string, d time.Duration, fileCount int) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("strategy", strategy),
	)
	if m.total != nil {
		m.total.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), attrs)
	}
	if m.files != nil {
		m.files.Record(ctx, int64(fileCount), attrs)
	}
}
