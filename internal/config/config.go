package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis (per-sermon run locks; empty disables locking)
	RedisURL string

	// OpenAI (preferred TTS provider)
	OpenAIKey string

	// ElevenLabs (TTS fallback when OpenAI key is not set)
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// Gemini TTS (experimental, behind a feature flag)
	GeminiKey        string
	GeminiTTSEnabled bool

	// Audio assembly
	AudioGapMs          int // Silence inserted between chunks, in milliseconds
	SynthTimeoutSeconds int // Per-chunk synthesis timeout
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:             getEnv("API_PORT", "8080"),
		BackendAPIKey:       getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		OpenAIKey:           getEnv("OPENAI_API_KEY", ""),
		ElevenLabsKey:       getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:   getEnv("ELEVENLABS_VOICE_ID", ""),
		GeminiKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiTTSEnabled:    getEnvBool("GEMINI_TTS_ENABLED", false),
		AudioGapMs:          getEnvInt("AUDIO_GAP_MS", 500),
		SynthTimeoutSeconds: getEnvInt("SYNTH_TIMEOUT_SECONDS", 60),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// At least one TTS provider must be configured
	if cfg.OpenAIKey == "" && cfg.ElevenLabsKey == "" && !(cfg.GeminiTTSEnabled && cfg.GeminiKey != "") {
		return nil, fmt.Errorf("a TTS provider is required: set OPENAI_API_KEY, ELEVENLABS_API_KEY, or GEMINI_API_KEY with GEMINI_TTS_ENABLED")
	}

	if cfg.AudioGapMs < 0 {
		return nil, fmt.Errorf("AUDIO_GAP_MS must not be negative")
	}
	if cfg.SynthTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("SYNTH_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
