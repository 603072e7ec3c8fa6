// Package config loads service configuration from a .env file and the
// process environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

// SwaggerConfig overrides the generated swagger document at runtime.
type SwaggerConfig struct {
	Host    string
	Schemes []string
}

// Config holds everything the service needs at startup.
type Config struct {
	AppEnv string
	Port   string

	// CLIProxyAPI management API access.
	CPAURL       string
	CPAPassword  string
	CPAVerifySSL bool

	// Rendering.
	HighResRender bool
	CacheDir      string

	// LLM analysis (dashboard).
	EnableLLMAnalysis bool
	LLMAPIURL         string
	LLMAPIKey         string
	LLMModel          string

	// Per-provider account render caps for the quota cards (0 = unlimited).
	MaxRenderCount map[string]int

	Swagger SwaggerConfig
}

// Load reads .env (if present) and builds the Config. Missing optional
// values fall back to defaults; CPA credentials may legitimately be empty
// for the one-shot render command.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("config: no .env file loaded", logger.WithError(err))
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		CPAURL:            strings.TrimRight(os.Getenv("CPA_URL"), "/"),
		CPAPassword:       os.Getenv("CPA_PASSWORD"),
		CPAVerifySSL:      getBool("CPA_VERIFY_SSL", false),
		HighResRender:     getBool("HIGH_RES_RENDER", true),
		CacheDir:          getEnv("CACHE_DIR", "cache"),
		EnableLLMAnalysis: getBool("ENABLE_LLM_ANALYSIS", false),
		LLMAPIURL:         strings.TrimRight(os.Getenv("LLM_API_URL"), "/"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		MaxRenderCount: map[string]int{
			"antigravity": getInt("MAX_RENDER_ANTIGRAVITY", 10),
			"gemini-cli":  getInt("MAX_RENDER_GEMINI_CLI", 10),
			"codex":       getInt("MAX_RENDER_CODEX", 10),
		},
		Swagger: SwaggerConfig{
			Host:    os.Getenv("SWAGGER_HOST"),
			Schemes: splitList(os.Getenv("SWAGGER_SCHEMES")),
		},
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
