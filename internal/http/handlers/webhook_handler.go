// README: Telegram webhook endpoint; acknowledges fast and dispatches in the background.
package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler consumes one Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update)
}

type WebhookHandler struct {
	updates UpdateHandler
	secret  string
	timeout time.Duration
}

// NewWebhookHandler accepts updates on /webhook/<secret>. An empty secret
// accepts any path segment.
func NewWebhookHandler(updates UpdateHandler, secret string, timeout time.Duration) *WebhookHandler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &WebhookHandler{updates: updates, secret: secret, timeout: timeout}
}

// Receive handles POST /webhook/:secret.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.secret)) != 1 {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}

	var u tgbotapi.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	// Telegram redelivers slow webhooks, so the update outlives the request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.timeout)
	go func() {
		defer cancel()
		h.updates.HandleUpdate(ctx, u)
	}()

	writeJSON(c, http.StatusOK, gin.H{"ok": true})
}
