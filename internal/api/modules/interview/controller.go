package interview

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/ai/gemini"
	"github.com/voicehire/interview-server/internal/api/respond"
	"github.com/voicehire/interview-server/internal/interview"
	"github.com/voicehire/interview-server/internal/resume"
	interviewstore "github.com/voicehire/interview-server/internal/stores/interview"
)

// maxResumeBytes bounds uploaded resume size (15 MB).
const maxResumeBytes = 15 << 20

// Controller handles the interview flow and its persistence endpoints.
type Controller struct {
	svc   *interview.Service
	store interviewstore.Store
	log   *zap.Logger
}

// analyzeResponse is the ResumeAnalysis plus the extracted-text preview the
// upload flow reports back.
type analyzeResponse struct {
	interview.ResumeAnalysis
	TextPreview string `json:"textPreview,omitempty"`
	TextLength  int    `json:"textLength,omitempty"`
}

// saveRequest is the session document shape persisted for a finished
// interview.
type saveRequest struct {
	JobTitle      string              `json:"jobTitle"`
	ResumeSummary string              `json:"resume_summary"`
	Feedback      string              `json:"feedback"`
	Score         *int                `json:"score"`
	Messages      []interview.Message `json:"messages"`
}

// Analyze handles POST /api/analyze: multipart resume upload plus job info,
// returning the resume analysis with the first question.
func (ctl *Controller) Analyze(c *gin.Context) {
	if ctl.svc == nil {
		respond.NotConfigured(c, "Text generation is not configured. Set GEMINI_API_KEY.")
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Resume file is required", err)
		return
	}
	if fileHeader.Size > maxResumeBytes {
		respond.Error(c, http.StatusBadRequest, "Resume file is too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not read resume file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not read resume file", err)
		return
	}

	doc, err := resume.FromUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not process resume file", err)
		return
	}

	analysis, err := ctl.svc.StartInterview(c.Request.Context(), doc, c.PostForm("jobTitle"), c.PostForm("jobDescription"))
	if err != nil {
		ctl.modelError(c, err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		ResumeAnalysis: *analysis,
		TextPreview:    doc.Preview(),
		TextLength:     len(doc.Text),
	})
}

// NextTurn handles POST /api/interview/next: one question/answer round over
// the client-held transcript.
func (ctl *Controller) NextTurn(c *gin.Context) {
	if ctl.svc == nil {
		respond.NotConfigured(c, "Text generation is not configured. Set GEMINI_API_KEY.")
		return
	}

	var req interview.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not parse request body", err)
		return
	}
	if req.ResumeSummary == "" || len(req.Messages) == 0 {
		respond.Error(c, http.StatusBadRequest, "resumeSummary and messages array required", nil)
		return
	}

	result, err := ctl.svc.NextTurn(c.Request.Context(), req)
	if err != nil {
		ctl.modelError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SaveInterview handles POST /api/interviews.
func (ctl *Controller) SaveInterview(c *gin.Context) {
	if ctl.store == nil {
		respond.NotConfigured(c, "Interview persistence is not configured. Set DATABASE_URL.")
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Could not parse request body", err)
		return
	}

	record := &interviewstore.Record{
		JobTitle:      req.JobTitle,
		ResumeSummary: req.ResumeSummary,
		Feedback:      req.Feedback,
		Score:         req.Score,
		Messages:      req.Messages,
	}
	if err := ctl.store.Save(c.Request.Context(), record); err != nil {
		ctl.log.Error("failed to save interview", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to save interview", err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListInterviews handles GET /api/interviews.
func (ctl *Controller) ListInterviews(c *gin.Context) {
	if ctl.store == nil {
		respond.NotConfigured(c, "Interview persistence is not configured. Set DATABASE_URL.")
		return
	}

	records, err := ctl.store.List(c.Request.Context())
	if err != nil {
		ctl.log.Error("failed to list interviews", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to list interviews", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interviews": records})
}

// GetInterview handles GET /api/interviews/:id.
func (ctl *Controller) GetInterview(c *gin.Context) {
	if ctl.store == nil {
		respond.NotConfigured(c, "Interview persistence is not configured. Set DATABASE_URL.")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid interview id", err)
		return
	}

	record, err := ctl.store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, interviewstore.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Interview not found", nil)
			return
		}
		ctl.log.Error("failed to get interview", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Failed to get interview", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// modelError maps gateway failures onto the HTTP error taxonomy. The prompt
// itself never appears in a response; invalid-JSON failures carry a
// truncated copy of the raw model output as the diagnostic.
func (ctl *Controller) modelError(c *gin.Context, err error) {
	var invalidJSON *gemini.InvalidJSONError
	var schemaErr *gemini.SchemaError

	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		respond.NotConfigured(c, "Text generation is not configured. Set GEMINI_API_KEY.")
	case errors.Is(err, gemini.ErrEmptyResponse):
		respond.Error(c, http.StatusInternalServerError, "Model returned no text. Try again.", err)
	case errors.As(err, &invalidJSON):
		ctl.log.Warn("model returned invalid JSON", zap.String("raw_preview", invalidJSON.Raw))
		respond.Error(c, http.StatusInternalServerError, "Model returned invalid JSON. Try again.", errors.New(invalidJSON.Raw))
	case errors.As(err, &schemaErr):
		respond.Error(c, http.StatusInternalServerError, "Model response was missing required fields", err)
	default:
		ctl.log.Error("model request failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Text generation failed", err)
	}
}
