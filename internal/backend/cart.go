package backend

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
)

type productDTO struct {
	ID           string          `json:"_id"`
	Name         string          `json:"productName"`
	Category     string          `json:"category"`
	Images       []string        `json:"productImage"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

type cartItemDTO struct {
	ID       string      `json:"_id"`
	Product  *productDTO `json:"productId"`
	Quantity int         `json:"quantity"`
}

func (d cartItemDTO) lineItem() cart.LineItem {
	li := cart.LineItem{ID: d.ID, Quantity: d.Quantity, UnitPrice: decimal.Zero}
	if d.Product != nil {
		li.Product = &cart.ProductRef{
			ID:       d.Product.ID,
			Name:     d.Product.Name,
			Category: d.Product.Category,
		}
		if len(d.Product.Images) > 0 {
			li.Product.Image = d.Product.Images[0]
		}
		li.UnitPrice = d.Product.SellingPrice
	}
	return li
}

// CartView returns the caller's cart. Items whose product was deleted come
// back with a nil Product.
func (c *Client) CartView(ctx context.Context) ([]cart.LineItem, error) {
	var dtos []cartItemDTO
	if err := c.do(ctx, "cart view", c.endpoints.CartView, nil, &dtos, nil); err != nil {
		return nil, err
	}
	items := make([]cart.LineItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, d.lineItem())
	}
	return items, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, id string, quantity int) error {
	body := map[string]any{"_id": id, "quantity": quantity}
	return c.do(ctx, "cart update", c.endpoints.UpdateCart, body, nil, nil)
}

func (c *Client) DeleteCartItem(ctx context.Context, id string) error {
	body := map[string]any{"_id": id}
	return c.do(ctx, "cart delete", c.endpoints.DeleteCart, body, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "cart clear", c.endpoints.ClearCart, nil, nil, nil)
}
