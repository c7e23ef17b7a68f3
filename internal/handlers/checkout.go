package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// orchestrator returns the session's checkout, writing a 409 when none has
// been started. A pending redirect is reported instead once a payment has
// completed and the form was retired.
func (h *Handler) orchestrator(c *gin.Context) (*checkout.Orchestrator, bool) {
	s := sessionOf(c)
	if o := s.Checkout(); o != nil {
		return o, true
	}
	if path := s.TakeRedirect(); path != "" {
		h.respond(c, http.StatusOK, gin.H{"redirect": path})
		return nil, false
	}
	h.respond(c, http.StatusConflict, gin.H{"error": "checkout_not_started"})
	return nil, false
}

func (h *Handler) GetCheckout(c *gin.Context) {
	o, ok := h.orchestrator(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, gin.H{"checkout": h.checkoutView(localeOf(c), o.Snapshot())})
}

func (h *Handler) CheckoutOptions(c *gin.Context) {
	h.respond(c, http.StatusOK, gin.H{"options": h.optionsView(localeOf(c))})
}

func (h *Handler) SetField(c *gin.Context) {
	var req fieldRequest
	if err := h.BindAndValidate(c, &req); err != nil {
		return
	}
	o, ok := h.orchestrator(c)
	if !ok {
		return
	}
	if err := o.SetField(req.Field, req.Value); err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"checkout": h.checkoutView(localeOf(c), o.Snapshot())})
}

func (h *Handler) SelectDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := h.BindAndValidate(c, &req); err != nil {
		return
	}
	o, ok := h.orchestrator(c)
	if !ok {
		return
	}
	if err := o.SelectDeliveryMethod(payment.DeliveryMethod(req.Method)); err != nil {
		h.writeError(c, err)
		return
	}
	h.respond(c, http.StatusOK, gin.H{"checkout": h.checkoutView(localeOf(c), o.Snapshot())})
}

// Submit runs the payment. A repeated Idempotency-Key replays the stored
// outcome when a ledger is configured.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	idempKey := c.GetHeader(HeaderIdempotencyKey)
	if idempKey == "" {
		h.respond(c, http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
		return
	}

	o, ok := h.orchestrator(c)
	if !ok {
		return
	}

	result, err := o.Submit(ctx, idempKey)
	if errors.Is(err, checkout.ErrDuplicateSubmission) && h.cfg.Replayer != nil {
		h.replay(ctx, c, idempKey)
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.respond(c, http.StatusOK, gin.H{
		"status":    "SUCCEEDED",
		"reference": result.Reference,
		"message":   result.Message,
		"checkout":  h.checkoutView(localeOf(c), o.Snapshot()),
	})
}

func (h *Handler) replay(ctx context.Context, c *gin.Context, key string) {
	rec, err := h.cfg.Replayer.Lookup(ctx, key)
	if err != nil {
		h.log.Error(ctx, "idempotency lookup failed", err)
		h.respond(c, http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed"})
		return
	}
	// Keys are only replayed to the session that claimed them.
	if rec == nil || rec.SessionID != sessionOf(c).ID {
		h.respond(c, http.StatusConflict, gin.H{"error": "duplicate_submission"})
		return
	}

	if status, stored, ok := rec.Response(); ok {
		body := gin.H{}
		if stored != "" && json.Unmarshal([]byte(stored), &body) != nil {
			body = gin.H{"response": stored}
		}
		if len(body) == 0 {
			body = gin.H{"attempt_id": rec.AttemptID}
		}
		body["replayed"] = true
		h.respond(c, status, body)
		return
	}

	switch rec.Status {
	case idempotency.StatusInProgress:
		h.respond(c, http.StatusAccepted, gin.H{"message": "request already in progress", "attempt_id": rec.AttemptID})
	case idempotency.StatusFailed:
		h.respond(c, http.StatusConflict, gin.H{"error": "previous_attempt_failed", "attempt_id": rec.AttemptID})
	default:
		h.respond(c, http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}
