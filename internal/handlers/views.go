package handlers

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/currency"
	"github.com/imrishuroy/storefront-checkout/internal/notify"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

type noticeView struct {
	Level   notify.Level `json:"level"`
	Message string       `json:"message"`
}

type moneyView struct {
	Amount    string `json:"amount"`
	Formatted string `json:"formatted"`
}

type lineView struct {
	ID        string           `json:"id"`
	Product   *cart.ProductRef `json:"product"`
	Quantity  int              `json:"quantity"`
	UnitPrice moneyView        `json:"unit_price"`
	Subtotal  moneyView        `json:"subtotal"`
}

type totalsView struct {
	Lines    int       `json:"lines"`
	Quantity int       `json:"quantity"`
	Price    moneyView `json:"price"`
}

type cartView struct {
	Items  []lineView `json:"items"`
	Totals totalsView `json:"totals"`
}

type checkoutView struct {
	State     checkout.State          `json:"state"`
	Form      payment.PaymentForm     `json:"form"`
	Errors    map[string]string       `json:"errors,omitempty"`
	Network   payment.Network         `json:"network,omitempty"`
	CVVLength int                     `json:"cvv_length"`
	Order     cartView                `json:"order"`
	Failure   string                  `json:"failure,omitempty"`
	Result    *checkout.PaymentResult `json:"result,omitempty"`
}

type optionsView struct {
	Regions         []string          `json:"regions"`
	DefaultRegion   string            `json:"default_region"`
	PickupPoints    []pickupPointView `json:"pickup_points"`
	DeliveryMethods []string          `json:"delivery_methods"`
}

type pickupPointView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (h *Handler) money(d decimal.Decimal) moneyView {
	return moneyView{Amount: d.StringFixed(currency.Places(d)), Formatted: h.cfg.Formatter.FormatDecimal(d)}
}

func (h *Handler) cartView(snap cart.Snapshot) cartView {
	items := make([]lineView, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, lineView{
			ID:        it.ID,
			Product:   it.Product,
			Quantity:  it.Quantity,
			UnitPrice: h.money(it.UnitPrice),
			Subtotal:  h.money(it.Subtotal()),
		})
	}
	return cartView{
		Items: items,
		Totals: totalsView{
			Lines:    snap.Totals.Lines,
			Quantity: snap.Totals.Quantity,
			Price:    h.money(snap.Totals.Price),
		},
	}
}

func (h *Handler) checkoutView(locale string, snap checkout.Snapshot) checkoutView {
	form := snap.Form.Clone()
	form.CardNumber = payment.FormatCardNumber(form.CardNumber)
	form.CVV = strings.Repeat("•", len(form.CVV))

	v := checkoutView{
		State:     snap.State,
		Form:      form,
		Network:   snap.Network,
		CVVLength: snap.Network.CVVLength(),
		Order:     h.cartView(snap.Order),
		Result:    snap.Result,
	}
	if len(snap.Errors) > 0 {
		v.Errors = snap.Errors.Translate(func(key string) string { return h.cfg.Catalog.T(locale, key) })
	}
	if snap.Failure != "" {
		v.Failure = h.cfg.Catalog.T(locale, snap.Failure)
	}
	return v
}

func (h *Handler) optionsView(locale string) optionsView {
	points := make([]pickupPointView, 0, len(payment.PickupPoints))
	for _, p := range payment.PickupPoints {
		points = append(points, pickupPointView{ID: p.ID, Label: h.cfg.Catalog.T(locale, p.LabelKey)})
	}
	return optionsView{
		Regions:         payment.Regions,
		DefaultRegion:   payment.DefaultRegion,
		PickupPoints:    points,
		DeliveryMethods: []string{string(payment.DeliveryCourier), string(payment.DeliveryPickup)},
	}
}

func (h *Handler) notices(locale string, ns []notify.Notification) []noticeView {
	out := make([]noticeView, 0, len(ns))
	for _, n := range ns {
		msg := n.Message
		if msg == "" {
			msg = h.cfg.Catalog.T(locale, n.Key)
		}
		out = append(out, noticeView{Level: n.Level, Message: msg})
	}
	return out
}
