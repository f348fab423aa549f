package obs

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce      sync.Once
	opCounter        metric.Int64Counter
	latencyHistogram metric.Float64Histogram
	turnCounter      metric.Int64Counter
)

func installMetrics(m metric.Meter) {
	metricsOnce.Do(func() {
		if m == nil {
			return
		}
		opCounter, _ = m.Int64Counter("careerframe.operations",
			metric.WithDescription("Engine operations by name"))
		latencyHistogram, _ = m.Float64Histogram("careerframe.operation.latency_ms",
			metric.WithDescription("Engine operation latency (ms)"))
		turnCounter, _ = m.Int64Counter("careerframe.turns",
			metric.WithDescription("Interview turns processed"))
	})
}

func recordOperation(attrs ...attribute.KeyValue) {
	if opCounter != nil {
		opCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	}
}

func recordLatency(ms float64, attrs ...attribute.KeyValue) {
	if latencyHistogram != nil {
		latencyHistogram.Record(context.Background(), ms, metric.WithAttributes(attrs...))
	}
}

// RecordTurn counts one processed interview turn.
func RecordTurn(attrs ...attribute.KeyValue) {
	if turnCounter != nil {
		turnCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	}
}
