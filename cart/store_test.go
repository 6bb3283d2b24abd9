package cart_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"storefront-service/cart"
	apperrors "storefront-service/common/errors"
	"storefront-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shoe = models.Product{ID: "1", SKU: "SHOE-001", Name: "프리미엄 러닝화", Price: 159000}
	bag  = models.Product{ID: "2", SKU: "BAG-002", Name: "가죽 토트백", Price: 289000}
	tee  = models.Product{ID: "4", SKU: "SHIRT-004", Name: "린넨 셔츠", Price: 89000}
)

func TestStore_AddSameProductMergesLine(t *testing.T) {
	s := cart.NewStore()

	require.NoError(t, s.AddItem(shoe, 2))
	require.NoError(t, s.AddItem(shoe, 3))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestStore_AddRejectsNonPositiveQuantity(t *testing.T) {
	s := cart.NewStore()

	err := s.AddItem(shoe, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	err = s.AddItem(shoe, -1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	assert.True(t, s.IsEmpty())
}

func TestStore_AddRejectsQuantityPastMax(t *testing.T) {
	s := cart.NewStore()

	err := s.AddItem(shoe, math.MaxInt)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	assert.True(t, s.IsEmpty())

	require.NoError(t, s.AddItem(shoe, cart.MaxQuantity-1))
	require.NoError(t, s.AddItem(shoe, 1))

	err = s.AddItem(shoe, 1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	err = s.AddItem(shoe, math.MaxInt)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	line, _ := s.Line("1")
	assert.Equal(t, cart.MaxQuantity, line.Quantity)
	assert.Equal(t, cart.MaxQuantity, s.Count())
	assert.Equal(t, shoe.Price*int64(cart.MaxQuantity), s.Total())
}

func TestStore_AddTwiceTotals(t *testing.T) {
	s := cart.NewStore()

	require.NoError(t, s.AddItem(shoe, 1))
	require.NoError(t, s.AddItem(shoe, 1))

	line, ok := s.Line("1")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(318000), s.Total())
}

func TestStore_KeepsInsertionOrder(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(bag, 1)
	_ = s.AddItem(shoe, 1)
	_ = s.AddItem(bag, 1)
	_ = s.AddItem(tee, 1)

	var ids []string
	for _, l := range s.Lines() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"2", "1", "4"}, ids)
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 1)

	s.RemoveItem("missing")

	assert.Equal(t, 1, s.Len())
}

func TestStore_ChangeQuantityToZeroRemovesLine(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 3)
	_ = s.AddItem(bag, 1)

	require.NoError(t, s.ChangeQuantity("1", -3))

	_, ok := s.Line("1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
	for _, l := range s.Lines() {
		assert.Greater(t, l.Quantity, 0)
	}
}

func TestStore_ChangeQuantityBelowZeroRemovesLine(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 1)

	require.NoError(t, s.ChangeQuantity("1", -5))

	assert.True(t, s.IsEmpty())
}

func TestStore_ChangeQuantityAdjusts(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 2)

	require.NoError(t, s.ChangeQuantity("1", 3))
	line, _ := s.Line("1")
	assert.Equal(t, 5, line.Quantity)

	require.NoError(t, s.ChangeQuantity("1", -4))
	line, _ = s.Line("1")
	assert.Equal(t, 1, line.Quantity)

	require.NoError(t, s.ChangeQuantity("missing", 1))
	assert.Equal(t, 1, s.Len())
}

func TestStore_ChangeQuantityRejectsIncreasePastMax(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 1)

	err := s.ChangeQuantity("1", math.MaxInt)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
	err = s.ChangeQuantity("1", cart.MaxQuantity)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))

	line, ok := s.Line("1")
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)

	require.NoError(t, s.ChangeQuantity("1", cart.MaxQuantity-1))
	line, _ = s.Line("1")
	assert.Equal(t, cart.MaxQuantity, line.Quantity)
}

func TestStore_ChangeQuantityLargeDecreaseRemovesLine(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 2)

	require.NoError(t, s.ChangeQuantity("1", math.MinInt))

	assert.True(t, s.IsEmpty())
}

func TestStore_RestoreCapsMergedQuantity(t *testing.T) {
	s := cart.NewStore()
	s.Restore([]models.CartLine{
		{Product: shoe, Quantity: 60},
		{Product: shoe, Quantity: 60},
		{Product: bag, Quantity: math.MaxInt},
	})

	shoeLine, _ := s.Line("1")
	bagLine, _ := s.Line("2")
	assert.Equal(t, cart.MaxQuantity, shoeLine.Quantity)
	assert.Equal(t, cart.MaxQuantity, bagLine.Quantity)
}

func TestStore_LinesReturnsCopy(t *testing.T) {
	s := cart.NewStore()
	_ = s.AddItem(shoe, 1)

	lines := s.Lines()
	lines[0].Quantity = 99

	line, _ := s.Line("1")
	assert.Equal(t, 1, line.Quantity)
}

func TestStore_RestoreNormalisesLines(t *testing.T) {
	s := cart.NewStore()
	s.Restore([]models.CartLine{
		{Product: shoe, Quantity: 1},
		{Product: bag, Quantity: 0},
		{Product: shoe, Quantity: 2},
	})

	require.Equal(t, 1, s.Len())
	line, _ := s.Line("1")
	assert.Equal(t, 3, line.Quantity)
}

func TestStore_CountAndTotalMatchLinesUnderRandomOps(t *testing.T) {
	products := []models.Product{shoe, bag, tee}
	rng := rand.New(rand.NewSource(42))
	s := cart.NewStore()

	for i := 0; i < 500; i++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(3) {
		case 0:
			_ = s.AddItem(p, 1+rng.Intn(4))
		case 1:
			s.RemoveItem(p.ID)
		case 2:
			_ = s.ChangeQuantity(p.ID, rng.Intn(7)-3)
		}

		var count int
		var total int64
		seen := map[string]bool{}
		for _, l := range s.Lines() {
			require.False(t, seen[l.ID], "duplicate line for %s", l.ID)
			seen[l.ID] = true
			require.GreaterOrEqual(t, l.Quantity, 1)
			count += l.Quantity
			total += l.Price * int64(l.Quantity)
		}
		require.Equal(t, count, s.Count())
		require.Equal(t, total, s.Total())
	}
}
