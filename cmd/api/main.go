package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/ai/gemini"
	"github.com/voicehire/interview-server/internal/api"
	"github.com/voicehire/interview-server/internal/config"
	"github.com/voicehire/interview-server/internal/interview"
	"github.com/voicehire/interview-server/internal/logger"
	"github.com/voicehire/interview-server/internal/speech"
	interviewstore "github.com/voicehire/interview-server/internal/stores/interview"
)

// Start the API server
func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config once; components receive it explicitly
	cfg := config.Load(envFile)

	zlog, err := logger.New(os.Getenv("LOG_JSON") != "", os.Getenv("LOG_DEBUG") != "")
	if err != nil {
		log.Fatalf("[MAIN]: Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	deps := api.Dependencies{
		Config:    cfg,
		Logger:    zlog,
		ModelName: cfg.GeminiModel,
	}

	// Each provider is optional; unconfigured features answer 503 instead
	// of failing startup.
	if cfg.GeminiConfigured() {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, zlog)
		if err != nil {
			zlog.Fatal("failed to create gemini client", zap.Error(err))
		}
		deps.Interview = interview.NewService(client, zlog)
	} else {
		zlog.Warn("GEMINI_API_KEY not set; analyze and interview endpoints disabled")
	}

	if cfg.TTSConfigured() {
		deps.TTS = speech.NewTTSProxy(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, zlog)
	} else {
		zlog.Warn("ElevenLabs TTS not configured; /api/tts disabled")
	}

	if cfg.STTConfigured() {
		deps.Bridge = speech.NewBridge(cfg.ElevenLabsAPIKey, cfg.STTEndpoint, zlog)
	} else {
		zlog.Warn("ElevenLabs STT not configured; /ws/stt disabled")
	}

	if cfg.StoreConfigured() {
		store, err := interviewstore.NewMySQLStore(cfg.DatabaseURL)
		if err != nil {
			zlog.Fatal("failed to initialize interview store", zap.Error(err))
		}
		defer store.Close()
		deps.Store = store
	} else {
		zlog.Warn("DATABASE_URL not set; interview persistence disabled")
	}

	if err := api.Start(deps); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
