// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transferair/internal/http/handlers"
	"transferair/internal/http/middleware"
	"transferair/internal/modules/pricing"
)

type RouterDeps struct {
	Updates       handlers.UpdateHandler
	Pricing       *pricing.Service
	WebhookSecret string
	UpdateTimeout time.Duration
	QuoteTimeout  time.Duration
	Logger        *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/", health)
	r.GET("/health", health)

	if deps.Updates != nil {
		webhook := handlers.NewWebhookHandler(deps.Updates, deps.WebhookSecret, deps.UpdateTimeout)
		r.POST("/webhook/:secret", webhook.Receive)
		if deps.WebhookSecret == "" {
			r.POST("/webhook", webhook.Receive)
		}
	}

	if deps.Pricing != nil {
		quote := handlers.NewQuoteHandler(deps.Pricing, deps.QuoteTimeout)
		r.GET("/api/quote", quote.Get)
	}

	return r
}
