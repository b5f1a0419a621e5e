package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POCKET_OPTION_SSID", "POCKET_OPTION_URL", "POCKET_OPTION_MODE",
		"API_BIND", "API_PORT",
		"DATABASE_URL", "REDIS_URL", "TELEGRAM_BOT_TOKEN",
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"DEFAULT_ASSET", "DEFAULT_TIMEFRAME", "MIN_CONFIDENCE", "BASE_STAKE_PCT",
		"MIN_TRAIN_SAMPLES",
		"TOURNAMENT_AUTO_JOIN", "TOURNAMENT_SCAN_MINS", "TOURNAMENT_CHECK_MINS",
		"MCP_TRANSPORT", "MCP_HTTP_BIND", "MCP_HTTP_PORT", "MCP_AUTH_TOKEN",
		"MCP_REQUEST_TIMEOUT_SECS", "MCP_RATE_LIMIT_PER_MIN", "SERVER_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if !cfg.Demo {
		t.Fatal("expected demo mode by default")
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.APIBind != "0.0.0.0" || cfg.APIPort != 5000 {
		t.Fatalf("unexpected API defaults: %s:%d", cfg.APIBind, cfg.APIPort)
	}
	if cfg.DefaultAsset != "EURUSD_otc" || cfg.DefaultTimeframe != 60 {
		t.Fatalf("unexpected market defaults: %s/%d", cfg.DefaultAsset, cfg.DefaultTimeframe)
	}
	if cfg.MinConfidence != 0.75 || cfg.BaseStakePct != 0.02 {
		t.Fatalf("unexpected trading defaults: %+v", cfg)
	}
	if cfg.MinTrainSamples != 50 {
		t.Fatalf("expected default train samples 50, got %d", cfg.MinTrainSamples)
	}
	if !cfg.TournamentAutoJoin || cfg.TournamentScanMins != 60 || cfg.TournamentCheckMins != 10 {
		t.Fatalf("unexpected tournament defaults: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPBind != "127.0.0.1" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected MCP defaults: %+v", cfg)
	}
	if cfg.MCPRequestTimeoutSecs != 5 || cfg.MCPRateLimitPerMin != 60 {
		t.Fatalf("unexpected MCP timeout/rate defaults: %+v", cfg)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected default OpenAI model, got %s", cfg.OpenAIModel)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Fatalf("expected default server url, got %s", cfg.ServerURL)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("POCKET_OPTION_SSID", "session-id")
	t.Setenv("POCKET_OPTION_MODE", "real")
	t.Setenv("API_PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("DEFAULT_ASSET", "GBPUSD_otc")
	t.Setenv("DEFAULT_TIMEFRAME", "300")
	t.Setenv("MIN_CONFIDENCE", "0.80")
	t.Setenv("BASE_STAKE_PCT", "0.03")
	t.Setenv("MIN_TRAIN_SAMPLES", "100")
	t.Setenv("TOURNAMENT_AUTO_JOIN", "false")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("MCP_HTTP_PORT", "9191")
	t.Setenv("MCP_AUTH_TOKEN", "secret")
	t.Setenv("SERVER_URL", "http://bot:5000")

	cfg := Load()
	if cfg.Demo {
		t.Fatal("expected real mode")
	}
	if cfg.PocketOptionSSID != "session-id" || cfg.APIPort != 8080 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DefaultAsset != "GBPUSD_otc" || cfg.DefaultTimeframe != 300 {
		t.Fatalf("unexpected market config: %s/%d", cfg.DefaultAsset, cfg.DefaultTimeframe)
	}
	if cfg.MinConfidence != 0.80 || cfg.BaseStakePct != 0.03 || cfg.MinTrainSamples != 100 {
		t.Fatalf("unexpected trading config: %+v", cfg)
	}
	if cfg.TournamentAutoJoin {
		t.Fatal("expected tournament auto-join disabled")
	}
	if cfg.MCPTransport != "http" || cfg.MCPHTTPPort != 9191 || cfg.MCPAuthToken != "secret" {
		t.Fatalf("unexpected MCP config: %+v", cfg)
	}
	if cfg.OpenAIModel != "gpt-4o" || cfg.ServerURL != "http://bot:5000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_PORT", "bad")
	t.Setenv("DEFAULT_ASSET", "DOGEUSD")
	t.Setenv("DEFAULT_TIMEFRAME", "42")
	t.Setenv("MIN_CONFIDENCE", "7")
	t.Setenv("BASE_STAKE_PCT", "0.5")
	t.Setenv("MCP_TRANSPORT", "carrier-pigeon")
	t.Setenv("MCP_HTTP_PORT", "bad")

	cfg := Load()
	if cfg.APIPort != 5000 {
		t.Fatalf("invalid API port should fall back to default, got %d", cfg.APIPort)
	}
	if cfg.DefaultAsset != "EURUSD_otc" || cfg.DefaultTimeframe != 60 {
		t.Fatalf("invalid market values should fall back: %s/%d", cfg.DefaultAsset, cfg.DefaultTimeframe)
	}
	if cfg.MinConfidence != 0.75 || cfg.BaseStakePct != 0.02 {
		t.Fatalf("invalid trading values should fall back: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("invalid MCP values should fall back: %+v", cfg)
	}
}
