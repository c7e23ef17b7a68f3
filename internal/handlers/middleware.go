package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imrishuroy/storefront-checkout/internal/backend"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
	"github.com/imrishuroy/storefront-checkout/internal/session"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderUserID    = "X-User-Id"

	ctxSession = "storefront.session"
	ctxLocale  = "storefront.locale"
	ctxUserID  = "storefront.user_id"
)

// RequestLogger tags the request context with a request ID and logs each
// completed request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		ctx = log.WithFields(c.Request.Context(), map[string]any{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			log.Error(ctx, "request failed", err)
			return
		}
		log.Info(ctx, "request completed")
	}
}

// Session resolves the sf_session cookie, the caller's locale and user, and
// forwards the caller's other cookies to the backend.
func (h *Handler) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if ck, err := c.Request.Cookie(session.CookieName); err == nil {
			id = ck.Value
		}
		s, created := h.cfg.Sessions.Get(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, s.ID, h.cfg.CookieMaxAge, "/", "", h.cfg.SecureCookies, true)
		}

		var forwarded []*http.Cookie
		for _, ck := range c.Request.Cookies() {
			if ck.Name != session.CookieName {
				forwarded = append(forwarded, ck)
			}
		}

		ctx := h.log.WithSessionID(c.Request.Context(), s.ID)
		ctx = backend.WithCredentials(ctx, forwarded)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ctxSession, s)
		c.Set(ctxLocale, h.cfg.Catalog.Match(c.GetHeader("Accept-Language"), h.cfg.DefaultLocale))
		c.Set(ctxUserID, c.GetHeader(HeaderUserID))
		c.Next()
	}
}

func sessionOf(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func localeOf(c *gin.Context) string {
	return c.GetString(ctxLocale)
}
