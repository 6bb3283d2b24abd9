// Package cart holds the shopper's line items.
package cart

import (
	apperrors "storefront-service/common/errors"
	"storefront-service/models"
)

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = 99

// Store keeps at most one line per product id, in insertion order.
// It is not safe for concurrent use; a session owns exactly one Store.
type Store struct {
	lines []models.CartLine
}

func NewStore() *Store {
	return &Store{}
}

// AddItem increments the line for product.ID by quantity, creating the line
// when it does not exist yet.
func (s *Store) AddItem(product models.Product, quantity int) error {
	if quantity <= 0 {
		return apperrors.InvalidArgumentf("quantity must be positive, got %d", quantity)
	}
	current := 0
	i := s.index(product.ID)
	if i >= 0 {
		current = s.lines[i].Quantity
	}
	if quantity > MaxQuantity-current {
		return exceedsMax(product.ID, current)
	}
	if i >= 0 {
		s.lines[i].Quantity += quantity
		return nil
	}
	s.lines = append(s.lines, models.CartLine{Product: product, Quantity: quantity})
	return nil
}

// RemoveItem deletes the line for productID. Absent lines are ignored.
func (s *Store) RemoveItem(productID string) {
	i := s.index(productID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

// ChangeQuantity adjusts a line by delta; a result of zero or less removes it.
// An increase past MaxQuantity is rejected and leaves the line unchanged.
func (s *Store) ChangeQuantity(productID string, delta int) error {
	i := s.index(productID)
	if i < 0 {
		return nil
	}
	current := s.lines[i].Quantity
	if delta > 0 {
		if delta > MaxQuantity-current {
			return exceedsMax(productID, current)
		}
		s.lines[i].Quantity += delta
		return nil
	}
	if delta <= -current {
		s.RemoveItem(productID)
		return nil
	}
	s.lines[i].Quantity += delta
	return nil
}

func exceedsMax(productID string, current int) error {
	return apperrors.InvalidArgumentf("quantity for product %q would exceed %d (currently %d)", productID, MaxQuantity, current)
}

// Total is the sum of price × quantity over all lines.
func (s *Store) Total() int64 {
	var total int64
	for _, l := range s.lines {
		total += l.LineValue()
	}
	return total
}

// Count is the sum of quantities over all lines.
func (s *Store) Count() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Line returns a copy of the line for productID.
func (s *Store) Line(productID string) (models.CartLine, bool) {
	i := s.index(productID)
	if i < 0 {
		return models.CartLine{}, false
	}
	return s.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []models.CartLine {
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len is the number of distinct lines.
func (s *Store) Len() int { return len(s.lines) }

func (s *Store) IsEmpty() bool { return len(s.lines) == 0 }

func (s *Store) Clear() { s.lines = nil }

// Restore replaces the contents with lines, merging duplicate ids and
// dropping non-positive quantities so the store invariants hold. Merged
// quantities are capped at MaxQuantity.
func (s *Store) Restore(lines []models.CartLine) {
	s.lines = nil
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		current := 0
		if existing, ok := s.Line(l.ID); ok {
			current = existing.Quantity
		}
		_ = s.AddItem(l.Product, min(l.Quantity, MaxQuantity-current))
	}
}

func (s *Store) index(productID string) int {
	for i, l := range s.lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}
