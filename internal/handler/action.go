package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type actionRequest struct {
	Action string `json:"action" binding:"required"`
	Value  any    `json:"value"`
}

// HandleAction godoc
// @Summary      Execute a bot command
// @Description  Starts/stops the bot or trading, or adjusts asset, timeframe and confidence
// @Tags         bot
// @Accept       json
// @Produce      json
// @Param        request  body  actionRequest  true  "Command"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /action [post]
func (h *Handler) HandleAction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.action")
	defer span.End()

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "action is required"})
		return
	}
	span.SetAttributes(attribute.String("action", req.Action))

	switch req.Action {
	case "start":
		if h.bot.Running() {
			c.JSON(http.StatusOK, gin.H{"status": "info", "message": "Bot already in start state."})
			return
		}
		if err := h.bot.Start(ctx); err != nil {
			log.Printf("handler: start failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Bot started."})
		return

	case "stop":
		if !h.bot.Running() {
			c.JSON(http.StatusOK, gin.H{"status": "info", "message": "Bot already in stop state."})
			return
		}
		if err := h.bot.Stop(ctx); err != nil {
			log.Printf("handler: stop failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Bot stopped."})
		return
	}

	if !h.bot.Running() {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Bot is not running. Start it first."})
		return
	}

	var err error
	switch req.Action {
	case "start_trading":
		h.bot.StartTrading()
	case "stop_trading":
		h.bot.StopTrading()
	case "set_asset":
		err = h.bot.SetAsset(ctx, stringValue(req.Value))
	case "set_timeframe":
		var tf int
		if tf, err = intValue(req.Value); err == nil {
			err = h.bot.SetTimeframe(tf)
		}
	case "set_confidence":
		var confidence float64
		if confidence, err = floatValue(req.Value); err == nil {
			h.bot.SetMinConfidence(confidence)
		}
	case "join_tournament":
		err = h.bot.JoinTournament(ctx, stringValue(req.Value))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("Action %q executed.", req.Action)})
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func intValue(v any) (int, error) {
	switch x := v.(type) {
	case float64:
		return int(x), nil
	case string:
		return strconv.Atoi(x)
	default:
		return 0, fmt.Errorf("value must be a number")
	}
}

func floatValue(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("value must be a number")
	}
}
