package models

// Product is an immutable catalog entry.
type Product struct {
	ID            string  `json:"id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         int64   `json:"price"`                    // whole currency units
	OriginalPrice *int64  `json:"original_price,omitempty"` // pre-discount price, if discounted
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
}

// DiscountPercent returns the rounded-down discount against OriginalPrice,
// or 0 when the product is not discounted.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price || *p.OriginalPrice == 0 {
		return 0
	}
	return int((*p.OriginalPrice - p.Price) * 100 / *p.OriginalPrice)
}
