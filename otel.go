package sdk

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// otelMetrics holds the OpenTelemetry metric instruments for the
// ingestion pipeline. They are created once during pipeline construction
// and reused for every document.
type otelMetrics struct {
	// clauseCounter increments per clause processed, with an "outcome"
	// attribute (accepted, rejected, failed)
	clauseCounter metric.Int64Counter

	// confidenceHistogram records per-clause extraction confidence
	confidenceHistogram metric.Float64Histogram

	// durationHistogram records whole-document ingest duration in
	// milliseconds
	durationHistogram metric.Float64Histogram

	// nodeCounter increments by the number of nodes persisted
	nodeCounter metric.Int64Counter
}

// initOTelMetrics creates and initializes all metric instruments. Called
// once when a MeterProvider is configured.
func (p *Pipeline) initOTelMetrics() (*otelMetrics, error) {
	if p.otelMeter == nil {
		return nil, nil
	}

	metrics := &otelMetrics{}
	var err error

	metrics.clauseCounter, err = p.otelMeter.Int64Counter(
		"ingest.clauses",
		metric.WithDescription("Number of clauses processed, by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create clause counter: %w", err)
	}

	metrics.confidenceHistogram, err = p.otelMeter.Float64Histogram(
		"ingest.confidence",
		metric.WithDescription("Per-clause extraction confidence from 0.0 to 1.0"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create confidence histogram: %w", err)
	}

	metrics.durationHistogram, err = p.otelMeter.Float64Histogram(
		"ingest.duration",
		metric.WithDescription("Document ingest duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	metrics.nodeCounter, err = p.otelMeter.Int64Counter(
		"ingest.nodes",
		metric.WithDescription("Number of graph nodes persisted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create node counter: %w", err)
	}

	return metrics, nil
}

// startIngestSpan opens the document-level span. Returns the original
// context and a no-op end function when tracing is not configured.
func (p *Pipeline) startIngestSpan(ctx context.Context, documentID string) (context.Context, trace.Span) {
	if p.otelTracer == nil {
		return ctx, nil
	}
	ctx, span := p.otelTracer.Start(ctx, "pipeline.ingest",
		trace.WithAttributes(attribute.String("document.id", documentID)))
	return ctx, span
}

// recordClauseOutcome records per-clause metrics. Safe to call with OTel
// unconfigured.
func (p *Pipeline) recordClauseOutcome(ctx context.Context, outcome string, confidence float64) {
	if p.otelMetrics == nil {
		return
	}
	opts := metric.WithAttributes(attribute.String("outcome", outcome))
	p.otelMetrics.clauseCounter.Add(ctx, 1, opts)
	p.otelMetrics.confidenceHistogram.Record(ctx, confidence, opts)
}

// recordIngest finalizes the document-level span and records document
// metrics. If OTel operations are unconfigured this returns silently;
// observability must never break ingestion.
func (p *Pipeline) recordIngest(ctx context.Context, span trace.Span, report *Report, duration time.Duration, err error) {
	if span != nil {
		span.SetAttributes(
			attribute.String("run.id", report.RunID),
			attribute.Int("ingest.clauses_total", report.ClausesTotal),
			attribute.Int("ingest.clauses_accepted", report.ClausesAccepted),
			attribute.Float64("ingest.parsing_confidence", report.ParsingConfidence),
			attribute.Float64("ingest.duration_ms", float64(duration.Milliseconds())),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok,
				fmt.Sprintf("persisted %d nodes, %d relationships",
					report.Stats.TotalNodes, report.Stats.TotalRelationships))
		}
		span.End()
	}

	if p.otelMetrics != nil {
		p.otelMetrics.durationHistogram.Record(ctx, float64(duration.Milliseconds()))
		if err == nil {
			p.otelMetrics.nodeCounter.Add(ctx, int64(report.Stats.TotalNodes))
		}
	}
}
