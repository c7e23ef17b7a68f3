package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplaceFiltersStaleItems(t *testing.T) {
	s := NewStore()
	err := s.Replace([]LineItem{
		item("a", 1, "5"),
		{ID: "stale", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		item("zero", 0, "5"),
	})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
}

func TestStoreReplaceRejectsDuplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Replace([]LineItem{item("a", 1, "5")}))

	err := s.Replace([]LineItem{item("b", 1, "5"), item("b", 2, "5")})
	require.ErrorIs(t, err, ErrDuplicateLineItem)
	assert.Equal(t, "a", s.Items()[0].ID, "failed replace must not change state")
}

func TestStoreSetQuantityBelowOneRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		s := NewStore()
		require.NoError(t, s.Replace([]LineItem{item("a", 2, "5"), item("b", 1, "1")}))

		require.NoError(t, s.SetQuantity("a", q))
		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "b", items[0].ID)
		for _, it := range items {
			assert.Positive(t, it.Quantity)
		}
	}
}

func TestStoreTotalsFollowMutations(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Replace([]LineItem{item("a", 2, "10"), item("b", 1, "2.5")}))
	assert.True(t, s.Totals().Price.Equal(decimal.RequireFromString("22.5")))

	require.NoError(t, s.SetQuantity("b", 3))
	assert.True(t, s.Totals().Price.Equal(decimal.RequireFromString("27.5")))
	assert.Equal(t, 5, s.Totals().Quantity)

	require.NoError(t, s.Remove("a"))
	assert.True(t, s.Totals().Price.Equal(decimal.RequireFromString("7.5")))

	s.Clear()
	assert.Empty(t, s.Items())
	assert.True(t, s.Totals().Price.IsZero())
}

func TestStoreUnknownID(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.SetQuantity("missing", 2), ErrLineItemNotFound)
	assert.ErrorIs(t, s.Remove("missing"), ErrLineItemNotFound)
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore()
	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { seen = append(seen, snap) })

	require.NoError(t, s.Replace([]LineItem{item("a", 2, "3")}))
	require.NoError(t, s.SetQuantity("a", 4))
	_ = s.SetQuantity("missing", 1)

	require.Len(t, seen, 2, "failed mutations do not notify")
	assert.Equal(t, 4, seen[1].Totals.Quantity)
	assert.True(t, seen[1].Totals.Price.Equal(Aggregate(seen[1].Items).Price))

	unsubscribe()
	s.Clear()
	assert.Len(t, seen, 2)
}

func TestStoreItemsReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Replace([]LineItem{item("a", 2, "3")}))
	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 2, s.Items()[0].Quantity)
}
