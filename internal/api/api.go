package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/config"
	"github.com/voicehire/interview-server/internal/interview"
	"github.com/voicehire/interview-server/internal/speech"
	interviewstore "github.com/voicehire/interview-server/internal/stores/interview"

	health_module "github.com/voicehire/interview-server/internal/api/modules/health"
	interview_module "github.com/voicehire/interview-server/internal/api/modules/interview"
	speech_module "github.com/voicehire/interview-server/internal/api/modules/speech"
)

// Dependencies carries the wired components into the HTTP layer. Any entry
// other than Config and Logger may be nil when its credential is absent; the
// owning module answers 503 for the affected endpoints.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Interview *interview.Service
	ModelName string
	Store     interviewstore.Store
	TTS       *speech.TTSProxy
	Bridge    *speech.Bridge
}

// NewEngine builds the gin engine with all modules registered.
func NewEngine(deps Dependencies) *gin.Engine {
	engine := gin.Default()
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	health_module.RegisterRoutes(baseGroup, deps.ModelName)
	interview_module.RegisterRoutes(baseGroup, deps.Interview, deps.Store, deps.Logger)
	speech_module.RegisterRoutes(engine, baseGroup, deps.TTS, deps.Bridge, deps.Logger)

	return engine
}

// Start builds the engine and serves it on the configured port.
func Start(deps Dependencies) error {
	return NewEngine(deps).Run(":" + deps.Config.Port)
}
