package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homilyhq/homily/internal/api"
	"github.com/homilyhq/homily/internal/config"
	"github.com/homilyhq/homily/internal/db"
	"github.com/homilyhq/homily/internal/locks"
	"github.com/homilyhq/homily/internal/services"
	"github.com/homilyhq/homily/internal/synthesis"
)

func main() {
	log.Println("Starting Homily API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis for run locks (optional — without it concurrent
	// runs for the same sermon are not serialized)
	var runLocks api.RunLocker
	if cfg.RedisURL != "" {
		l, err := locks.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer l.Close()
		runLocks = l
		log.Println("Connected to Redis for run locks")
	} else {
		log.Println("WARNING: No REDIS_URL set — concurrent synthesis runs are not serialized")
	}

	// Initialize TTS provider — OpenAI preferred, ElevenLabs as fallback,
	// Gemini behind a feature flag for evaluation
	var tts services.Synthesizer
	switch {
	case cfg.GeminiTTSEnabled && cfg.GeminiKey != "":
		tts = services.NewGeminiTTSService(cfg.GeminiKey)
		log.Println("TTS provider: Gemini (experimental)")
	case cfg.OpenAIKey != "":
		tts = services.NewOpenAITTSService(cfg.OpenAIKey)
		log.Println("TTS provider: OpenAI")
	case cfg.ElevenLabsKey != "":
		tts = services.NewElevenLabsService(cfg.ElevenLabsKey)
		log.Printf("TTS provider: ElevenLabs (voice: %s)", cfg.ElevenLabsVoiceID)
	default:
		log.Fatal("No TTS provider configured")
	}

	pipeline := synthesis.New(
		database,
		tts,
		time.Duration(cfg.AudioGapMs)*time.Millisecond,
		time.Duration(cfg.SynthTimeoutSeconds)*time.Second,
	)

	// Create API handler
	handler := api.NewHandler(database, runLocks, pipeline)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
