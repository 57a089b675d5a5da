package speech

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/api/respond"
	"github.com/voicehire/interview-server/internal/speech"
)

// Browsers cannot set custom WS headers, so origin checking stays open like
// the CORS policy on the rest of the API.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 << 10,
	WriteBufferSize: 16 << 10,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Controller handles the speech endpoints.
type Controller struct {
	tts    *speech.TTSProxy
	bridge *speech.Bridge
	log    *zap.Logger
}

// ttsRequest is the POST /api/tts body.
type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize handles POST /api/tts: streams audio/mpeg for the given text.
func (ctl *Controller) Synthesize(c *gin.Context) {
	if ctl.tts == nil {
		respond.NotConfigured(c, "Text-to-speech is not configured. Set ELEVENLABS_API_KEY and ELEVENLABS_VOICE_ID.")
		return
	}

	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not parse request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, "text is required", nil)
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	err := ctl.tts.Stream(c.Request.Context(), req.Text, req.ModelID, c.Writer)
	if err != nil {
		var upstream *speech.UpstreamError
		if errors.As(err, &upstream) && !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			respond.Error(c, http.StatusBadGateway, "Text-to-speech provider error", err)
			return
		}
		// Mid-stream failures cannot be turned into an error response; the
		// status line already went out.
		ctl.log.Warn("tts stream aborted", zap.Error(err))
	}
}

// Stream handles WS /ws/stt: upgrades the connection and relays audio
// frames and transcript events for one recording gesture.
func (ctl *Controller) Stream(c *gin.Context) {
	if ctl.bridge == nil {
		respond.NotConfigured(c, "Transcription is not configured. Set ELEVENLABS_API_KEY.")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own error response.
		ctl.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if err := ctl.bridge.Relay(c.Request.Context(), conn); err != nil {
		ctl.log.Debug("stt relay ended", zap.Error(err))
	}
}
