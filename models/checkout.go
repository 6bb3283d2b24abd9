package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CheckoutState is the shopper's position in the checkout flow.
type CheckoutState int

const (
	CheckoutBrowsing CheckoutState = iota
	CheckoutPaymentEntry
	CheckoutCompleted
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutBrowsing:
		return "browsing"
	case CheckoutPaymentEntry:
		return "payment_entry"
	case CheckoutCompleted:
		return "completed"
	default:
		return fmt.Sprintf("CheckoutState(%d)", int(s))
	}
}

// ParseCheckoutState is the inverse of String.
func ParseCheckoutState(s string) (CheckoutState, error) {
	switch s {
	case "browsing":
		return CheckoutBrowsing, nil
	case "payment_entry":
		return CheckoutPaymentEntry, nil
	case "completed":
		return CheckoutCompleted, nil
	default:
		return CheckoutBrowsing, fmt.Errorf("unknown checkout state %q", s)
	}
}

func (s CheckoutState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CheckoutState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCheckoutState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Order is the snapshot taken when a purchase is confirmed.
type Order struct {
	ID       string     `json:"id"`
	Lines    []CartLine `json:"lines"`
	Total    int64      `json:"total"`
	PlacedAt time.Time  `json:"placed_at"`
}

// OrderCompletedEvent is published once per confirmed purchase.
type OrderCompletedEvent struct {
	EventType string     `json:"event_type"` // "order.completed"
	SessionID string     `json:"session_id"`
	OrderID   string     `json:"order_id"`
	Lines     []CartLine `json:"lines"`
	Total     int64      `json:"total"`
	Timestamp time.Time  `json:"timestamp"`
}
