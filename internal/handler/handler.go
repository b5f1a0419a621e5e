package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"pocket-pulse/internal/domain"
)

// Bot is the trading engine surface the HTTP API drives.
type Bot interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
	StartTrading()
	StopTrading()
	SetAsset(ctx context.Context, asset string) error
	SetTimeframe(timeframe int) error
	SetMinConfidence(confidence float64)
	JoinTournament(ctx context.Context, id string) error
	Status(ctx context.Context) domain.BotStatus
	MarketAnalysis(ctx context.Context) domain.MarketAnalysis
	TradeStats(ctx context.Context) domain.TradeStats
}

// Learner ingests uploaded documents into the knowledge base.
type Learner interface {
	LearnFromPDF(ctx context.Context, filename string, data []byte) (int, error)
}

type Handler struct {
	tracer  trace.Tracer
	bot     Bot
	learner Learner
	cache   *redis.Client
}

func New(tracer trace.Tracer, bot Bot, learner Learner, cache *redis.Client) *Handler {
	return &Handler{
		tracer:  tracer,
		bot:     bot,
		learner: learner,
		cache:   cache,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/status", h.GetStatus)
	r.GET("/market-analysis", h.GetMarketAnalysis)
	r.GET("/trade-stats", h.GetTradeStats)
	r.POST("/action", h.HandleAction)
	r.POST("/upload-pdf", h.UploadPDF)
}

// Health godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
