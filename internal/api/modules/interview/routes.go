package interview

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/interview"
	interviewstore "github.com/voicehire/interview-server/internal/stores/interview"
)

// Register routes for the interview module. Service or store may be nil when
// the corresponding credential is absent; affected endpoints answer 503.
func RegisterRoutes(g *gin.RouterGroup, svc *interview.Service, store interviewstore.Store, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	ctl := &Controller{svc: svc, store: store, log: log}

	g.POST("/analyze", ctl.Analyze)            // Analyze a resume and open an interview
	g.POST("/interview/next", ctl.NextTurn)    // Run one question/answer round
	g.POST("/interviews", ctl.SaveInterview)   // Persist a finished interview
	g.GET("/interviews", ctl.ListInterviews)   // List saved interviews, newest first
	g.GET("/interviews/:id", ctl.GetInterview) // Fetch one saved interview
}
