package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTradeStats godoc
// @Summary      Get trade history and performance
// @Description  Returns the last 50 trades (newest first) with aggregate counters
// @Tags         trades
// @Produce      json
// @Success      200  {object}  domain.TradeStats
// @Router       /trade-stats [get]
func (h *Handler) GetTradeStats(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-trade-stats")
	defer span.End()

	c.JSON(http.StatusOK, h.bot.TradeStats(ctx))
}
