package eventlog

import (
	"context"
	"fmt"

	"storefront-service/models"

	"go.uber.org/zap"
)

// MetricAnalyticsEvents counts recorded payloads per event type.
const MetricAnalyticsEvents = "AnalyticsEvents"

// Tee fans a record out to every sink in order. All sinks run; the first
// error is returned.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Record(ctx context.Context, eventType models.EventType, summary string, payload models.TrackingPayload) error {
	var first error
	for _, s := range t {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, eventType, summary, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AuditSink writes one structured log line per payload.
type AuditSink struct {
	logger *zap.Logger
}

func NewAuditSink(logger *zap.Logger) *AuditSink {
	return &AuditSink{logger: logger}
}

func (a *AuditSink) Record(_ context.Context, eventType models.EventType, summary string, payload models.TrackingPayload) error {
	a.logger.Info("analytics_event",
		zap.String("event_type", string(eventType)),
		zap.String("summary", summary),
		zap.Any("payload", payload.Fields()),
	)
	return nil
}

// CountRecorder is the slice of the metrics client the sink needs.
type CountRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// MetricsSink increments MetricAnalyticsEvents with an EventType dimension.
type MetricsSink struct {
	metrics CountRecorder
	service string
}

func NewMetricsSink(metrics CountRecorder, service string) *MetricsSink {
	return &MetricsSink{metrics: metrics, service: service}
}

func (m *MetricsSink) Record(ctx context.Context, eventType models.EventType, _ string, _ models.TrackingPayload) error {
	if m.metrics == nil {
		return nil
	}
	err := m.metrics.RecordCount(ctx, MetricAnalyticsEvents, map[string]string{
		"Service":   m.service,
		"EventType": string(eventType),
	})
	if err != nil {
		return fmt.Errorf("record %s metric: %w", eventType, err)
	}
	return nil
}

// BestEffort logs and swallows errors from sink so a failing secondary
// sink cannot fail the shopper's action.
func BestEffort(sink Sink, logger *zap.Logger) Sink {
	return bestEffortSink{sink: sink, logger: logger}
}

type bestEffortSink struct {
	sink   Sink
	logger *zap.Logger
}

func (b bestEffortSink) Record(ctx context.Context, eventType models.EventType, summary string, payload models.TrackingPayload) error {
	if err := b.sink.Record(ctx, eventType, summary, payload); err != nil {
		b.logger.Warn("Secondary analytics sink failed (non-fatal)",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
	return nil
}
