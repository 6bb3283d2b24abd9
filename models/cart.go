package models

// CartLine is a product held in the cart together with its quantity.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// LineValue is price × quantity for the line.
func (l CartLine) LineValue() int64 {
	return l.Price * int64(l.Quantity)
}
