package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"pocket-pulse/internal/bot"
	"pocket-pulse/internal/config"
	"pocket-pulse/internal/job"
	"pocket-pulse/internal/market"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func TestListenAddr(t *testing.T) {
	cfg := &config.Config{APIBind: "0.0.0.0", APIPort: 5000}
	if got := listenAddr(cfg); got != "0.0.0.0:5000" {
		t.Fatalf("expected 0.0.0.0:5000, got %s", got)
	}

	cfg = &config.Config{APIBind: "127.0.0.1", APIPort: 8123}
	if got := listenAddr(cfg); got != "127.0.0.1:8123" {
		t.Fatalf("expected 127.0.0.1:8123, got %s", got)
	}
}

func TestMarketClientSelection(t *testing.T) {
	client := newMarketClientFunc(&config.Config{Demo: true})
	if !client.Simulation() {
		t.Fatal("expected simulator without broker session")
	}

	client = newMarketClientFunc(&config.Config{PocketOptionSSID: "session"})
	if client.Simulation() {
		t.Fatal("expected live broker client with a session id")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewMarketClient := newMarketClientFunc
	origStartTelegram := startTelegramBotFunc
	origStartTournament := startTournamentJobFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			APIBind:             "127.0.0.1",
			APIPort:             0,
			DefaultAsset:        "EURUSD_otc",
			DefaultTimeframe:    60,
			MinConfidence:       0.75,
			Demo:                true,
			TournamentAutoJoin:  true,
			TournamentScanMins:  60,
			TournamentCheckMins: 10,
		}
	}
	initPostgresFunc = func(context.Context, string) {}
	initRedisFunc = func(context.Context, string) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newMarketClientFunc = func(*config.Config) market.Client { return market.NewSimulator(true) }
	startTelegramBotFunc = func(string, bot.StatusReporter, *redis.Client) *bot.AlertDispatcher { return nil }
	startTournamentJobFunc = func(*job.TournamentScheduler, context.Context) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newMarketClientFunc = origNewMarketClient
		startTelegramBotFunc = origStartTelegram
		startTournamentJobFunc = origStartTournament
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}
