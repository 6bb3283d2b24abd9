package analytics

import (
	"strconv"
	"strings"

	"storefront-service/models"
)

// EncodeProduct is the view-only product string ";<sku>".
func EncodeProduct(sku string) string {
	return ";" + sku
}

// EncodeLine is the commerce product string ";<sku>;<qty>;<price×qty>".
func EncodeLine(sku string, quantity int, price int64) string {
	return ";" + sku + ";" + strconv.Itoa(quantity) + ";" + strconv.FormatInt(price*int64(quantity), 10)
}

// EncodeLines joins each line's commerce encoding with ',' in slice order.
func EncodeLines(lines []models.CartLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = EncodeLine(l.SKU, l.Quantity, l.Price)
	}
	return strings.Join(parts, ",")
}

// LinesTotal is the sum of price × quantity over lines.
func LinesTotal(lines []models.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.LineValue()
	}
	return total
}
