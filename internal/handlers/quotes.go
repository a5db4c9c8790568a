package handlers

import (
	"errors"
	"net/http"

	"awareness_bell/internal/quotes"

	"github.com/gin-gonic/gin"
)

// @Summary      Pick a random quote
// @Description  Draws one quote uniformly from the loaded collection without speaking it.
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "quote, count"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/quotes/random [get]
// @Security     BearerAuth
func (h *Handler) randomQuote(c *gin.Context) {
	q, err := h.services.Quotes.PickRandom()
	if err != nil {
		if errors.Is(err, quotes.ErrEmptyCollection) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to pick quote", "quote_pick_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "count": h.services.Quotes.Len()})
}

// @Summary      Reload quotes
// @Description  Re-reads the quote source. On failure the previous collection stays active.
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count"
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/v1/quotes/reload [post]
// @Security     BearerAuth
func (h *Handler) reloadQuotes(c *gin.Context) {
	n, err := h.services.Quotes.Reload()
	if err != nil {
		var le *quotes.LoadError
		if errors.As(err, &le) {
			h.logAndJSONError(c, http.StatusUnprocessableEntity, err.Error(), "quotes_reload_failed", err)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to reload quotes", "quotes_reload_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
