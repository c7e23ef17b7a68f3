package cart

import "github.com/shopspring/decimal"

// Aggregate sums quantity and quantity*price over items. Items without a
// product reference are skipped.
func Aggregate(items []LineItem) Totals {
	t := Totals{Price: decimal.Zero}
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		t.Lines++
		t.Quantity += it.Quantity
		t.Price = t.Price.Add(it.Subtotal())
	}
	return t
}

// visible drops items the cart must never show: stale product references
// and non-positive quantities.
func visible(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Product == nil || it.Quantity < 1 {
			continue
		}
		out = append(out, it)
	}
	return out
}
