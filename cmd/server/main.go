package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"pocket-pulse/internal/agent"
	"pocket-pulse/internal/bot"
	"pocket-pulse/internal/cache"
	"pocket-pulse/internal/config"
	"pocket-pulse/internal/db"
	"pocket-pulse/internal/handler"
	"pocket-pulse/internal/job"
	"pocket-pulse/internal/knowledge"
	"pocket-pulse/internal/market"
	"pocket-pulse/internal/repository"
	"pocket-pulse/internal/trader"
	"pocket-pulse/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "pocket-pulse/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newMarketClientFunc = func(cfg *config.Config) market.Client {
		if cfg.PocketOptionSSID == "" {
			return market.NewSimulator(cfg.Demo)
		}
		return market.NewPocketOption(cfg.PocketOptionSSID, cfg.PocketOptionURL)
	}
	startTelegramBotFunc   = bot.StartTelegramBot
	startTournamentJobFunc = func(s *job.TournamentScheduler, ctx context.Context) { go s.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Pocket Pulse API
// @version         1.0
// @description     REST control surface for the Pocket Option trading bot.

// @host      localhost:5000
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Repositories only exist when Postgres is up; without them the bot
	// still runs, it just loses durable trades, knowledge and models.
	var (
		tradeRepo    *repository.TradeRepository
		conceptStore knowledge.ConceptStore
		artifacts    agent.ArtifactStore
	)
	if db.Pool != nil {
		tradeRepo = repository.NewTradeRepository(db.Pool, tracer)
		conceptStore = repository.NewKnowledgeRepository(db.Pool, tracer)
		artifacts = repository.NewModelRepository(db.Pool, tracer)
	}

	tradingAgent := agent.New(artifacts, agent.Options{
		MinTrainingSamples: cfg.MinTrainSamples,
		BaseStakePct:       cfg.BaseStakePct,
	})
	tradingAgent.LoadModels(ctx)

	client := newMarketClientFunc(cfg)
	if !client.Simulation() && !cfg.Demo {
		log.Println("Warning: REAL trading mode enabled")
	}

	engine := trader.NewEngine(tracer, client, tradingAgent, trader.Config{
		Asset:         cfg.DefaultAsset,
		Timeframe:     cfg.DefaultTimeframe,
		MinConfidence: cfg.MinConfidence,
	})
	if tradeRepo != nil {
		engine.WithTradeRecorder(tradeRepo)
	}

	var learner *knowledge.Learner
	if cfg.OpenAIAPIKey != "" {
		extractor := knowledge.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		learner = knowledge.NewLearner(tracer, extractor, conceptStore)
	}
	engine.WithKnowledgeStats(learner)

	if dispatcher := startTelegramBotFunc(cfg.TelegramBotToken, engine, cache.Client); dispatcher != nil {
		engine.WithAlerter(dispatcher)
	}

	if cfg.TournamentAutoJoin {
		scheduler := job.NewTournamentScheduler(tracer, client,
			time.Duration(cfg.TournamentCheckMins)*time.Minute,
			time.Duration(cfg.TournamentScanMins)*time.Minute,
		)
		startTournamentJobFunc(scheduler, ctx)
	}

	var uploads handler.Learner
	if learner != nil {
		uploads = learner
	}
	h := handler.New(tracer, engine, uploads, cache.Client)

	r := newRouterFunc()
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("pocket-pulse"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    listenAddr(cfg),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	if engine.Running() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := engine.Stop(stopCtx); err != nil {
			log.Printf("error stopping trading engine: %v", err)
		}
		stopCancel()
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf("%s:%d", cfg.APIBind, cfg.APIPort)
}
