package speech

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/speech"
)

// Register routes for the speech module. The STT bridge lives at /ws/stt on
// the engine root (outside the /api group); TTS joins the /api group. Either
// may be nil when its credential is absent.
func RegisterRoutes(engine *gin.Engine, g *gin.RouterGroup, tts *speech.TTSProxy, bridge *speech.Bridge, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	ctl := &Controller{tts: tts, bridge: bridge, log: log}

	g.POST("/tts", ctl.Synthesize)    // Stream synthesized speech for a text
	engine.GET("/ws/stt", ctl.Stream) // Relay microphone PCM to the transcription provider
}
