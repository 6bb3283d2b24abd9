// Package eventlog records emitted tracking payloads.
package eventlog

import (
	"context"
	"time"

	"storefront-service/common/locale"
	"storefront-service/models"
)

// Capacity is the number of entries the in-memory log keeps.
const Capacity = 50

// Sink receives every tracking payload the storefront emits.
type Sink interface {
	Record(ctx context.Context, eventType models.EventType, summary string, payload models.TrackingPayload) error
}

// Log is a bounded, most-recent-first in-memory Sink.
// It is owned by a single session and is not safe for concurrent use.
type Log struct {
	entries []models.AnalyticsEvent
	now     func() time.Time
	format  *locale.Formatter
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func WithFormatter(f *locale.Formatter) Option {
	return func(l *Log) { l.format = f }
}

func NewLog(opts ...Option) *Log {
	l := &Log{
		now:    time.Now,
		format: locale.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record prepends a timestamped entry and evicts the oldest entries beyond
// Capacity. It never fails.
func (l *Log) Record(_ context.Context, eventType models.EventType, summary string, payload models.TrackingPayload) error {
	at := l.now()
	entry := models.AnalyticsEvent{
		Timestamp:  l.format.TimeOfDay(at),
		RecordedAt: at,
		EventType:  eventType,
		Summary:    summary,
		Payload:    payload,
	}

	l.entries = append(l.entries, models.AnalyticsEvent{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry
	if len(l.entries) > Capacity {
		l.entries = l.entries[:Capacity]
	}
	return nil
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []models.AnalyticsEvent {
	out := make([]models.AnalyticsEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int { return len(l.entries) }

// Restore replaces the log with events (newest first), truncated to Capacity.
func (l *Log) Restore(events []models.AnalyticsEvent) {
	n := len(events)
	if n > Capacity {
		n = Capacity
	}
	l.entries = make([]models.AnalyticsEvent, n)
	copy(l.entries, events[:n])
}
