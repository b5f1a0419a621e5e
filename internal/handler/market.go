package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pocket-pulse/internal/domain"
)

const (
	marketAnalysisCacheKey = "market_analysis"
	marketAnalysisCacheTTL = 2 * time.Second
)

// GetMarketAnalysis godoc
// @Summary      Get the current market analysis
// @Description  Returns candles, detected patterns, levels, indicators and trend for the active feed
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.MarketAnalysis
// @Router       /market-analysis [get]
func (h *Handler) GetMarketAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-analysis")
	defer span.End()

	// Dashboards poll this endpoint aggressively; a short-lived cache
	// keeps repeat hits off the engine between candles.
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, marketAnalysisCacheKey).Bytes(); err == nil {
			var analysis domain.MarketAnalysis
			if err := json.Unmarshal(cached, &analysis); err == nil {
				c.JSON(http.StatusOK, analysis)
				return
			}
		}
	}

	analysis := h.bot.MarketAnalysis(ctx)

	if h.cache != nil {
		if payload, err := json.Marshal(analysis); err == nil {
			h.cache.Set(ctx, marketAnalysisCacheKey, payload, marketAnalysisCacheTTL)
		}
	}

	c.JSON(http.StatusOK, analysis)
}
