package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment. It is
// built once at startup and handed to each component; nothing reads env vars
// at call sites.
type Config struct {
	Port           string
	CORSOrigins    []string
	RequestTimeout time.Duration

	// Text generation provider.
	GeminiAPIKey string
	GeminiModel  string

	// Speech providers (text-to-speech and realtime speech-to-text).
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	STTEndpoint       string

	// Interview persistence. Optional; endpoints answer 503 when unset.
	DatabaseURL string
}

const (
	defaultModel       = "gemini-1.5-flash-latest"
	defaultSTTEndpoint = "wss://api.elevenlabs.io/v1/speech-to-text/realtime" +
		"?model_id=scribe_v2_realtime&audio_format=pcm_16000&commit_strategy=vad" +
		"&language_code=en&include_timestamps=false"
)

// Load reads the given .env files (missing files are skipped) and builds a
// Config from the resulting environment.
func Load(files ...string) *Config {
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				log.Printf("[CONFIG]: Warning, could not load %s: %v", file, err)
			}
		}
	}

	return &Config{
		Port:           getDefault("API_PORT", "8080"),
		CORSOrigins:    splitList(getDefault("CORS_ALLOWED_ORIGINS", "*")),
		RequestTimeout: time.Duration(getIntDefault("REQUEST_TIMEOUT_SECONDS", 90)) * time.Second,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getDefault("GEMINI_MODEL", defaultModel),

		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		STTEndpoint:       getDefault("ELEVENLABS_STT_URL", defaultSTTEndpoint),

		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// GeminiConfigured reports whether the text generation provider can be used.
func (c *Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != ""
}

// TTSConfigured reports whether the text-to-speech proxy can be used.
func (c *Config) TTSConfigured() bool {
	return c.ElevenLabsAPIKey != "" && c.ElevenLabsVoiceID != ""
}

// STTConfigured reports whether the transcription bridge can be used.
func (c *Config) STTConfigured() bool {
	return c.ElevenLabsAPIKey != ""
}

// StoreConfigured reports whether interview persistence is available.
func (c *Config) StoreConfigured() bool {
	return c.DatabaseURL != ""
}

func getDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var parts []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
