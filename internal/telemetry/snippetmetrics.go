package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	snippetMetricsEnabled bool
	snippetExecutions     metric.Int64Counter
	snippetDuration       metric.Float64Histogram
)

func initSnippetInstruments(serviceName string) {
	meter := otel.Meter(serviceName + "/snippets")

	var err error
	snippetExecutions, err = meter.Int64Counter(
		"sniply_snippet_executions_total",
		metric.WithDescription("Snippet executions by code type and outcome"),
	)
	if err != nil {
		return
	}

	snippetDuration, err = meter.Float64Histogram(
		"sniply_snippet_execution_duration_seconds",
		metric.WithDescription("Snippet execution latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return
	}

	snippetMetricsEnabled = true
}

// RecordSnippetExecution is a no-op until Init has run.
func RecordSnippetExecution(ctx context.Context, codeType, status string, d time.Duration) {
	if !snippetMetricsEnabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("snippet.code_type", codeType),
		attribute.String("snippet.status", status),
	)
	snippetExecutions.Add(ctx, 1, attrs)
	snippetDuration.Record(ctx, d.Seconds(), attrs)
}
