package bootstrap

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr string

	HMACKey  string
	LogLevel string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string

	OpenAIAPIKey     string
	AssemblyAIAPIKey string
	RevAIAPIKey      string

	OpenAIEnabled     string
	AssemblyAIEnabled string
	RevAIEnabled      string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string

	SynthesisModel                 string
	SynthesisFallbackModels        string
	SynthesisTemperature           string
	SynthesisMaxTokens             string
	SynthesisReasoningEffort       string
	SynthesisNoTemperaturePrefixes string

	CostWarnUSD    float64
	CostHardCapUSD float64

	AudioTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		HMACKey:  getEnv("HMAC_KEY", "change-me-in-production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:   6334,
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		AssemblyAIAPIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		RevAIAPIKey:      getEnv("REVAI_API_KEY", ""),

		OpenAIEnabled:     getEnv("STT_OPENAI_ENABLED", ""),
		AssemblyAIEnabled: getEnv("STT_ASSEMBLYAI_ENABLED", ""),
		RevAIEnabled:      getEnv("STT_REVAI_ENABLED", ""),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", ""),

		SynthesisModel:                 getEnv("SYNTHESIS_MODEL", ""),
		SynthesisFallbackModels:        getEnv("SYNTHESIS_FALLBACK_MODELS", ""),
		SynthesisTemperature:           getEnv("SYNTHESIS_TEMPERATURE", ""),
		SynthesisMaxTokens:             getEnv("SYNTHESIS_MAX_TOKENS", ""),
		SynthesisReasoningEffort:       getEnv("SYNTHESIS_REASONING_EFFORT", ""),
		SynthesisNoTemperaturePrefixes: getEnv("SYNTHESIS_NO_TEMPERATURE_PREFIXES", ""),

		CostWarnUSD:    getEnvFloat("COST_WARN_USD", 0.05),
		CostHardCapUSD: getEnvFloat("COST_HARD_CAP_USD", 0.25),

		AudioTTL: time.Duration(getEnvInt("AUDIO_TTL_MINUTES", 30)) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
