package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"pocket-pulse/internal/domain"
)

type Config struct {
	PocketOptionSSID string
	PocketOptionURL  string
	Demo             bool

	APIBind string
	APIPort int

	DatabaseURL string
	RedisURL    string

	TelegramBotToken string

	OpenAIAPIKey string
	OpenAIModel  string

	DefaultAsset     string
	DefaultTimeframe int
	MinConfidence    float64
	BaseStakePct     float64

	MinTrainSamples int

	TournamentAutoJoin  bool
	TournamentScanMins  int
	TournamentCheckMins int

	MCPTransport          string
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int
	ServerURL             string
}

func Load() *Config {
	cfg := &Config{
		PocketOptionSSID: os.Getenv("POCKET_OPTION_SSID"),
		PocketOptionURL:  strings.TrimSpace(os.Getenv("POCKET_OPTION_URL")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	cfg.Demo = !strings.EqualFold(strings.TrimSpace(os.Getenv("POCKET_OPTION_MODE")), "real")
	if cfg.PocketOptionSSID == "" {
		log.Println("Warning: POCKET_OPTION_SSID not set, forcing simulation mode")
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, telegram bot disabled")
	}

	cfg.APIBind = strings.TrimSpace(os.Getenv("API_BIND"))
	if cfg.APIBind == "" {
		cfg.APIBind = "0.0.0.0"
	}

	cfg.APIPort = 5000
	if v := strings.TrimSpace(os.Getenv("API_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIPort = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, knowledge learning disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.DefaultAsset = strings.TrimSpace(os.Getenv("DEFAULT_ASSET"))
	if cfg.DefaultAsset == "" || !domain.IsSupportedAsset(cfg.DefaultAsset) {
		if cfg.DefaultAsset != "" {
			log.Printf("Warning: unsupported DEFAULT_ASSET=%q, defaulting to %s", cfg.DefaultAsset, domain.SupportedAssets[0])
		}
		cfg.DefaultAsset = domain.SupportedAssets[0]
	}

	cfg.DefaultTimeframe = 60
	if v := strings.TrimSpace(os.Getenv("DEFAULT_TIMEFRAME")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && domain.IsSupportedTimeframe(n) {
			cfg.DefaultTimeframe = n
		} else {
			log.Printf("Warning: unsupported DEFAULT_TIMEFRAME=%q, defaulting to 60", v)
		}
	}

	cfg.MinConfidence = 0.75
	if v := strings.TrimSpace(os.Getenv("MIN_CONFIDENCE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.MinConfidence = n
		}
	}

	cfg.BaseStakePct = 0.02
	if v := strings.TrimSpace(os.Getenv("BASE_STAKE_PCT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 0.05 {
			cfg.BaseStakePct = n
		}
	}

	cfg.MinTrainSamples = 50
	if v := strings.TrimSpace(os.Getenv("MIN_TRAIN_SAMPLES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MinTrainSamples = n
		}
	}

	cfg.TournamentAutoJoin = true
	if v := strings.TrimSpace(os.Getenv("TOURNAMENT_AUTO_JOIN")); v != "" {
		if strings.EqualFold(v, "false") {
			cfg.TournamentAutoJoin = false
		}
	}

	cfg.TournamentScanMins = 60
	if v := strings.TrimSpace(os.Getenv("TOURNAMENT_SCAN_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TournamentScanMins = n
		}
	}

	cfg.TournamentCheckMins = 10
	if v := strings.TrimSpace(os.Getenv("TOURNAMENT_CHECK_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TournamentCheckMins = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	cfg.ServerURL = strings.TrimSpace(os.Getenv("SERVER_URL"))
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:5000"
	}

	return cfg
}
