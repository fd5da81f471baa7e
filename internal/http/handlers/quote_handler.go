// README: Fare quote lookup over HTTP.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"transferair/internal/modules/pricing"
)

type QuoteHandler struct {
	pricing *pricing.Service
	timeout time.Duration
}

func NewQuoteHandler(svc *pricing.Service, timeout time.Duration) *QuoteHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &QuoteHandler{pricing: svc, timeout: timeout}
}

type quoteResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Currency string `json:"currency"`
	pricing.Quote
}

// Get handles GET /api/quote?from=&to=.
func (h *QuoteHandler) Get(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		writeError(c, http.StatusBadRequest, "missing from or to")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	q, err := h.pricing.Resolve(ctx, from, to)
	if err != nil {
		writePricingError(c, err)
		return
	}

	table := h.pricing.Table()
	writeJSON(c, http.StatusOK, quoteResponse{
		From:     table.Canonical(from),
		To:       table.Canonical(to),
		Currency: table.Currency(),
		Quote:    q,
	})
}
