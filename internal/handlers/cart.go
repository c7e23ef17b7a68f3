package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCart(c *gin.Context) {
	s := sessionOf(c)
	if err := s.Cart.Load(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"cart": h.cartView(s.Cart.Store().Snapshot())})
}

// UpdateCartItem sets a line's quantity; a quantity below 1 removes the line.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req quantityRequest
	if err := h.BindAndValidate(c, &req); err != nil {
		return
	}
	s := sessionOf(c)
	if err := s.Cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"cart": h.cartView(s.Cart.Store().Snapshot())})
}

func (h *Handler) DeleteCartItem(c *gin.Context) {
	s := sessionOf(c)
	if err := s.Cart.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"cart": h.cartView(s.Cart.Store().Snapshot())})
}

// CheckoutCart hands the cart to a fresh checkout form.
func (h *Handler) CheckoutCart(c *gin.Context) {
	ctx := c.Request.Context()
	s := sessionOf(c)
	if len(s.Cart.Store().Items()) == 0 {
		// The cart may simply not have been loaded in this session yet.
		_ = s.Cart.Load(ctx)
	}

	userID := c.GetString(ctxUserID)
	order, err := s.Cart.Checkout(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	o := h.cfg.Sessions.StartCheckout(s, userID, order)

	c.Header("Location", "/checkout")
	h.respond(c, http.StatusCreated, gin.H{"checkout": h.checkoutView(localeOf(c), o.Snapshot())})
}
