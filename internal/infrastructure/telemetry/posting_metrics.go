package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	appposting "github.com/stocklane/backend/internal/application/posting"
)

// PostingMetrics records posting outcomes as OpenTelemetry counters,
// partitioned by document kind and outcome
type PostingMetrics struct {
	postsTotal metric.Int64Counter
}

// NewPostingMetrics creates a new PostingMetrics on the global meter provider
func NewPostingMetrics() (*PostingMetrics, error) {
	meter := otel.GetMeterProvider().Meter(TracerName)

	postsTotal, err := meter.Int64Counter(
		"posting_operations_total",
		metric.WithDescription("Total document posting attempts by kind and outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &PostingMetrics{postsTotal: postsTotal}, nil
}

// RecordPost records one posting attempt
func (m *PostingMetrics) RecordPost(ctx context.Context, kind string, outcome string) {
	m.postsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// Ensure PostingMetrics implements the posting metrics contract
var _ appposting.Metrics = (*PostingMetrics)(nil)
