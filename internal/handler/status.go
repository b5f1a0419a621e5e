package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus godoc
// @Summary      Get bot status
// @Description  Returns the bot's run state, connection, balance and counters
// @Tags         bot
// @Produce      json
// @Success      200  {object}  domain.BotStatus
// @Router       /status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-status")
	defer span.End()

	c.JSON(http.StatusOK, h.bot.Status(ctx))
}
