package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EventType tags a tracking payload and its log entry.
type EventType string

const (
	EventPageView       EventType = "pageView"
	EventProductView    EventType = "prodView"
	EventAddToCart      EventType = "scAdd"
	EventRemoveFromCart EventType = "scRemove"
	EventCartView       EventType = "scView"
	EventCheckout       EventType = "scCheckout"
	EventPurchase       EventType = "purchase"
	EventInternalSearch EventType = "internalSearch"
	EventPromoClick     EventType = "promoClick"
)

// TrackingPayload is an immutable, event-type-tagged set of analytics fields.
// Values are either string or int64.
type TrackingPayload struct {
	eventType EventType
	fields    map[string]any
}

// NewTrackingPayload copies fields into a new payload. Values that are not
// string or an integer kind are stored via fmt.Sprint.
func NewTrackingPayload(eventType EventType, fields map[string]any) TrackingPayload {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = normalizeValue(v)
	}
	return TrackingPayload{eventType: eventType, fields: copied}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func (p TrackingPayload) EventType() EventType { return p.eventType }

func (p TrackingPayload) Len() int { return len(p.fields) }

// Get returns the raw value for key.
func (p TrackingPayload) Get(key string) (any, bool) {
	v, ok := p.fields[key]
	return v, ok
}

// Value returns the value for key rendered as a string, or "" when absent.
func (p TrackingPayload) Value(key string) string {
	v, ok := p.fields[key]
	if !ok {
		return ""
	}
	return renderValue(v)
}

// Fields returns a copy of the payload fields.
func (p TrackingPayload) Fields() map[string]any {
	out := make(map[string]any, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

// Keys returns the field names in sorted order.
func (p TrackingPayload) Keys() []string {
	keys := make([]string, 0, len(p.fields))
	for k := range p.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode renders the payload as sorted key=value pairs joined by '&'.
// Equal payloads always encode to identical strings.
func (p TrackingPayload) Encode() string {
	var b strings.Builder
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(renderValue(p.fields[k]))
	}
	return b.String()
}

// Equal reports whether both payloads carry the same tag and fields.
func (p TrackingPayload) Equal(other TrackingPayload) bool {
	return p.eventType == other.eventType && p.Encode() == other.Encode()
}

func renderValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

type payloadJSON struct {
	EventType EventType      `json:"event_type"`
	Fields    map[string]any `json:"fields"`
}

func (p TrackingPayload) MarshalJSON() ([]byte, error) {
	fields := p.fields
	if fields == nil {
		fields = map[string]any{}
	}
	return json.Marshal(payloadJSON{EventType: p.eventType, Fields: fields})
}

func (p *TrackingPayload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw payloadJSON
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	fields := make(map[string]any, len(raw.Fields))
	for k, v := range raw.Fields {
		switch t := v.(type) {
		case string:
			fields[k] = t
		case json.Number:
			n, err := t.Int64()
			if err != nil {
				return fmt.Errorf("payload field %q: %w", k, err)
			}
			fields[k] = n
		default:
			return fmt.Errorf("payload field %q: unsupported value %T", k, v)
		}
	}

	p.eventType = raw.EventType
	p.fields = fields
	return nil
}

// AnalyticsEvent is one entry of the event log.
type AnalyticsEvent struct {
	Timestamp  string          `json:"timestamp"`
	RecordedAt time.Time       `json:"recorded_at"`
	EventType  EventType       `json:"event_type"`
	Summary    string          `json:"summary"`
	Payload    TrackingPayload `json:"payload"`
}

// SessionSnapshot is the serialisable state of one shopper session.
type SessionSnapshot struct {
	SessionID string           `json:"session_id"`
	Lines     []CartLine       `json:"lines"`
	State     CheckoutState    `json:"state"`
	OrderID   string           `json:"order_id,omitempty"`
	Events    []AnalyticsEvent `json:"events"`
	UpdatedAt time.Time        `json:"updated_at"`
}
