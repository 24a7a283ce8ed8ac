package conversation

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

type metrics struct {
	turns             otelmetric.Int64Counter
	turnFailures      otelmetric.Int64Counter
	taskFailures      otelmetric.Int64Counter
	nameFallbacks     otelmetric.Int64Counter
	generationLatency otelmetric.Float64Histogram
}

func newMetrics(logger *log.Logger) *metrics {
	meter := otel.Meter("projectlens/conversation")
	m := &metrics{}
	var err error
	if m.turns, err = meter.Int64Counter("conversation_turns_total", otelmetric.WithDescription("Chat turns started")); err != nil {
		logger.Printf("otel counter conversation_turns_total: %v", err)
	}
	if m.turnFailures, err = meter.Int64Counter("conversation_turn_failures_total", otelmetric.WithDescription("Chat turns that failed, by kind")); err != nil {
		logger.Printf("otel counter conversation_turn_failures_total: %v", err)
	}
	if m.taskFailures, err = meter.Int64Counter("conversation_task_failures_total", otelmetric.WithDescription("Best-effort task failures, by task")); err != nil {
		logger.Printf("otel counter conversation_task_failures_total: %v", err)
	}
	if m.nameFallbacks, err = meter.Int64Counter("conversation_autoname_fallbacks_total", otelmetric.WithDescription("Auto-names that used the truncated first message")); err != nil {
		logger.Printf("otel counter conversation_autoname_fallbacks_total: %v", err)
	}
	if m.generationLatency, err = meter.Float64Histogram("conversation_generation_latency_ms", otelmetric.WithUnit("ms")); err != nil {
		logger.Printf("otel histogram conversation_generation_latency_ms: %v", err)
	}
	return m
}

func (m *metrics) turn(ctx context.Context) {
	if m.turns != nil {
		m.turns.Add(ctx, 1)
	}
}

func (m *metrics) failure(ctx context.Context, kind Kind) {
	if m.turnFailures != nil {
		m.turnFailures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", string(kind))))
	}
}

func (m *metrics) tasks(ctx context.Context, results []TaskResult) {
	if m.taskFailures == nil {
		return
	}
	for _, r := range results {
		if r.Err != nil {
			m.taskFailures.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("task", r.Name)))
		}
	}
}

func (m *metrics) nameFallback(ctx context.Context) {
	if m.nameFallbacks != nil {
		m.nameFallbacks.Add(ctx, 1)
	}
}

func (m *metrics) generation(ctx context.Context, purpose string, elapsed time.Duration, err error) {
	if m.generationLatency == nil {
		return
	}
	m.generationLatency.Record(ctx, float64(elapsed.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.Bool("error", err != nil),
	))
}
