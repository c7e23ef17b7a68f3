package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/storefront-checkout/internal/backend"
	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
)

// respond writes body as JSON with the session's pending notices attached.
func (h *Handler) respond(c *gin.Context, status int, body gin.H) {
	body["notices"] = h.drain(c)
	c.JSON(status, body)
}

func (h *Handler) drain(c *gin.Context) []noticeView {
	if _, ok := c.Get(ctxSession); !ok {
		return []noticeView{}
	}
	return h.notices(localeOf(c), sessionOf(c).Notices.Drain())
}

// writeError maps domain errors to status codes and snake_case codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *checkout.ValidationError
	var be *backend.BusinessError
	switch {
	case errors.As(err, &ve):
		locale := localeOf(c)
		h.respond(c, http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": ve.Fields.Translate(func(key string) string { return h.cfg.Catalog.T(locale, key) }),
		})
	case errors.As(err, &be):
		h.respond(c, http.StatusUnprocessableEntity, gin.H{"error": "backend_rejected", "message": be.Message})
	case errors.Is(err, backend.ErrTransport):
		h.respond(c, http.StatusBadGateway, gin.H{"error": "backend_unavailable"})
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		h.respond(c, http.StatusConflict, gin.H{"error": "submission_in_flight"})
	case errors.Is(err, checkout.ErrDuplicateSubmission):
		h.respond(c, http.StatusConflict, gin.H{"error": "duplicate_submission"})
	case errors.Is(err, checkout.ErrCompleted):
		h.respond(c, http.StatusConflict, gin.H{"error": "checkout_completed"})
	case errors.Is(err, checkout.ErrInactiveVariant):
		h.respond(c, http.StatusConflict, gin.H{"error": "inactive_delivery_method", "msg": err.Error()})
	case errors.Is(err, checkout.ErrUnknownField), errors.Is(err, checkout.ErrUnknownDelivery):
		h.respond(c, http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
	case errors.Is(err, cart.ErrEmptyCart):
		h.respond(c, http.StatusConflict, gin.H{"error": "empty_cart"})
	case errors.Is(err, cart.ErrLoginRequired):
		h.respond(c, http.StatusUnauthorized, gin.H{"error": "login_required"})
	case errors.Is(err, cart.ErrLineItemNotFound):
		h.respond(c, http.StatusNotFound, gin.H{"error": "line_item_not_found"})
	default:
		h.log.Error(c.Request.Context(), "unhandled error", err)
		h.respond(c, http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
