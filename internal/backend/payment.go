package backend

import (
	"context"
	"net/http"

	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

type paymentItemDTO struct {
	CartItemID string `json:"cartItemId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
}

type cardDTO struct {
	Name    string `json:"name"`
	Number  string `json:"number"`
	Expiry  string `json:"expiry"`
	CVV     string `json:"cvv"`
	Network string `json:"network,omitempty"`
}

type paymentRequestDTO struct {
	AttemptID string           `json:"attemptId"`
	Amount    string           `json:"amount"`
	Currency  string           `json:"currency"`
	Items     []paymentItemDTO `json:"items"`
	Card      cardDTO          `json:"card"`
	Delivery  payment.Delivery `json:"delivery"`
}

type paymentResultDTO struct {
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// Process submits a validated payment. It implements checkout.PaymentProcessor.
func (c *Client) Process(ctx context.Context, req checkout.PaymentRequest) (checkout.PaymentResult, error) {
	body := paymentRequestDTO{
		AttemptID: req.AttemptID,
		Amount:    req.Amount.StringFixed(2),
		Currency:  "MDL",
		Card: cardDTO{
			Name:    req.Form.CardName,
			Number:  payment.StripSpaces(req.Form.CardNumber),
			Expiry:  req.Form.Expiry,
			CVV:     req.Form.CVV,
			Network: string(req.Network),
		},
		Delivery: req.Form.Delivery,
	}
	for _, it := range req.Items {
		dto := paymentItemDTO{CartItemID: it.ID, Quantity: it.Quantity, UnitPrice: it.UnitPrice.String()}
		if it.Product != nil {
			dto.ProductID = it.Product.ID
		}
		body.Items = append(body.Items, dto)
	}

	header := http.Header{}
	if req.IdempotencyKey != "" {
		header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	var out paymentResultDTO
	if err := c.do(ctx, "payment", c.endpoints.Payment, body, &out, header); err != nil {
		return checkout.PaymentResult{}, err
	}
	return checkout.PaymentResult{Reference: out.Reference, Message: out.Message}, nil
}
