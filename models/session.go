package models

import "time"

// LineView is a cart line as returned to the front-end.
type LineView struct {
	ProductID      string `json:"product_id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
	LineTotal      int64  `json:"line_total"`
	FormattedTotal string `json:"formatted_total"`
}

// SessionView is the read model of one session.
type SessionView struct {
	SessionID      string     `json:"session_id"`
	State          string     `json:"state"`
	OrderID        string     `json:"order_id,omitempty"`
	Lines          []LineView `json:"lines"`
	Count          int        `json:"count"`
	Total          int64      `json:"total"`
	FormattedTotal string     `json:"formatted_total"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ProductView is a catalog entry with display strings.
type ProductView struct {
	Product
	FormattedPrice         string `json:"formatted_price"`
	FormattedOriginalPrice string `json:"formatted_original_price,omitempty"`
	DiscountPercent        int    `json:"discount_percent,omitempty"`
	Stars                  string `json:"stars"`
}

// CheckoutResult is returned by purchase confirmation. Replayed is set when
// an idempotency key matched an earlier confirmation.
type CheckoutResult struct {
	OrderID  string       `json:"order_id"`
	Total    int64        `json:"total"`
	Replayed bool         `json:"replayed"`
	Session  *SessionView `json:"session"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int   `json:"quantity"` // defaults to 1
}

type ChangeQuantityRequest struct {
	Delta int `json:"delta"`
}

type CategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

type PromotionClickRequest struct {
	Name     string `json:"name" binding:"required"`
	Position string `json:"position"`
}
