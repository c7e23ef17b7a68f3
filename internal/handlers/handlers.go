// Package handlers exposes the cart and checkout flows over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/storefront-checkout/internal/currency"
	"github.com/imrishuroy/storefront-checkout/internal/i18n"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
	"github.com/imrishuroy/storefront-checkout/internal/session"
)

// Replayer finds the stored outcome of an idempotency key.
type Replayer interface {
	Lookup(ctx context.Context, key string) (*idempotency.Record, error)
}

// HandlerConfig groups dependencies for the storefront routes.
type HandlerConfig struct {
	Sessions      *session.Manager
	Catalog       *i18n.Catalog
	Formatter     *currency.Formatter
	Replayer      Replayer
	Logger        *logger.Logger
	DefaultLocale string
	SecureCookies bool
	// CookieMaxAge is in seconds; zero issues a browser-session cookie.
	CookieMaxAge int
}

type Handler struct {
	cfg      HandlerConfig
	log      *logger.Logger
	validate *validatorv10.Validate
}

func New(cfg HandlerConfig) *Handler {
	if cfg.Catalog == nil {
		cfg.Catalog = i18n.MustNew()
	}
	if cfg.Formatter == nil {
		cfg.Formatter = &currency.Default
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = i18n.LocaleRO
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{cfg: cfg, log: log, validate: newRequestValidator()}
}

// RegisterRoutes registers the health, cart and checkout routes.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) *Handler {
	h := New(cfg)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group("/", h.Session())
	g.GET("/cart", h.GetCart)
	g.PATCH("/cart/items/:id", h.UpdateCartItem)
	g.DELETE("/cart/items/:id", h.DeleteCartItem)
	g.POST("/cart/checkout", h.CheckoutCart)

	g.GET("/checkout", h.GetCheckout)
	g.GET("/checkout/options", h.CheckoutOptions)
	g.PATCH("/checkout/fields", h.SetField)
	g.PUT("/checkout/delivery", h.SelectDelivery)
	g.POST("/checkout/submit", h.Submit)
	return h
}
