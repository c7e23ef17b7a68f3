package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/config"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL + "/"})
}

func TestCartView(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/view-cart-product", r.URL.Path)
		ck, err := r.Cookie("token")
		require.NoError(t, err)
		assert.Equal(t, "abc", ck.Value)

		_, _ = io.WriteString(w, `{"success":true,"error":false,"data":[
			{"_id":"l1","quantity":2,"productId":{"_id":"p1","productName":"Ceai","category":"drinks","productImage":["a.png","b.png"],"sellingPrice":12.5}},
			{"_id":"l2","quantity":1,"productId":null}
		]}`)
	})

	ctx := WithCredentials(context.Background(), []*http.Cookie{{Name: "token", Value: "abc"}})
	items, err := c.CartView(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "l1", items[0].ID)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Ceai", items[0].Product.Name)
	assert.Equal(t, "a.png", items[0].Product.Image)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Nil(t, items[1].Product)

	assert.Equal(t, 1, cart.Aggregate(items).Lines)
}

func TestUpdateAndDeleteBodies(t *testing.T) {
	var bodies []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body["path"] = r.URL.Path
		bodies = append(bodies, body)
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, c.UpdateCartItem(context.Background(), "l1", 3))
	require.NoError(t, c.DeleteCartItem(context.Background(), "l2"))

	require.Len(t, bodies, 2)
	assert.Equal(t, "/api/update-cart-product", bodies[0]["path"])
	assert.Equal(t, "l1", bodies[0]["_id"])
	assert.EqualValues(t, 3, bodies[0]["quantity"])
	assert.Equal(t, "/api/delete-cart-product", bodies[1]["path"])
	assert.Equal(t, "l2", bodies[1]["_id"])
}

func TestBusinessErrorKeepsServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"error":true,"message":"Produsul nu mai este în stoc"}`)
	})

	err := c.UpdateCartItem(context.Background(), "l1", 99)
	var be *BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.Status)
	assert.Equal(t, "Produsul nu mai este în stoc", be.PublicMessage())
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestTransportErrors(t *testing.T) {
	t.Run("not json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>bad gateway</html>")
		})
		assert.ErrorIs(t, c.ClearCart(context.Background()), ErrTransport)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := New(config.BackendConfig{BaseURL: srv.URL})
		_, err := c.CartView(context.Background())
		assert.ErrorIs(t, err, ErrTransport)
	})
}

func TestProcessSendsIdempotencyKey(t *testing.T) {
	var got paymentRequestDTO
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/checkout/payment", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"data":{"reference":"PAY-1"}}`)
	})

	form := payment.NewForm()
	form.CardName = "Ion Popescu"
	form.CardNumber = "4111 1111 1111 1111"
	form.Expiry = "12/27"
	form.CVV = "123"

	res, err := c.Process(context.Background(), checkout.PaymentRequest{
		AttemptID:      "attempt-1",
		IdempotencyKey: "key-123",
		Amount:         decimal.RequireFromString("25.5"),
		Items: []cart.LineItem{
			{ID: "l1", Product: &cart.ProductRef{ID: "p1"}, Quantity: 2, UnitPrice: decimal.RequireFromString("12.75")},
		},
		Form:    form,
		Network: payment.NetworkVisa,
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", res.Reference)

	assert.Equal(t, "25.50", got.Amount)
	assert.Equal(t, "MDL", got.Currency)
	assert.Equal(t, "4111111111111111", got.Card.Number)
	assert.Equal(t, "visa", got.Card.Network)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, payment.DeliveryCourier, got.Delivery.Method)
}

var _ checkout.PaymentProcessor = (*Client)(nil)
var _ cart.Backend = (*Client)(nil)
