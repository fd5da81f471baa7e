// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"transferair/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writePricingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrLocationNotFound):
		writeError(c, http.StatusUnprocessableEntity, "location not found")
	case errors.Is(err, pricing.ErrRouteNotFound):
		writeError(c, http.StatusUnprocessableEntity, "route not found")
	case errors.Is(err, pricing.ErrPricingUnavailable):
		writeError(c, http.StatusUnprocessableEntity, "pricing unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
