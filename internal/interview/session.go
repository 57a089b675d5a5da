package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/ai/gemini"
	"github.com/voicehire/interview-server/internal/resume"
)

// Generator is the slice of the model gateway the interview flow consumes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithDocument(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
	Model() string
}

// defaultMaxRounds is the server-side hard stop: once the candidate has
// given this many answers the interview terminates even if the model keeps
// asking for more.
const defaultMaxRounds = 10

// Service drives the interview lifecycle: resume analysis, one
// question/answer round at a time, and scoring at termination. The service
// itself is stateless; the caller round-trips the transcript on every call.
type Service struct {
	gen       Generator
	log       *zap.Logger
	maxRounds int
}

// NewService creates an interview service on top of a content generator.
func NewService(gen Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gen: gen, log: log, maxRounds: defaultMaxRounds}
}

// StartInterview analyzes the uploaded resume against the job posting and
// returns the analysis together with the first question. The caller seeds
// its transcript with the assistant's first question.
func (s *Service) StartInterview(ctx context.Context, doc resume.Document, jobTitle, jobDescription string) (*ResumeAnalysis, error) {
	prompt := AnalysisPrompt(jobTitle, jobDescription)

	var raw string
	var err error
	if doc.IsPDF() {
		raw, err = s.gen.GenerateWithDocument(ctx, prompt, doc.MIMEType, doc.Data)
	} else {
		raw, err = s.gen.Generate(ctx, "Resume content:\n"+doc.Text+"\n\n"+prompt)
	}
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ResumeSummary string `json:"resumeSummary"`
		FitScore      any    `json:"fitScore"`
		FitReason     string `json:"fitReason"`
		FirstQuestion string `json:"firstQuestion"`
	}
	if err := gemini.DecodeJSON(raw, &parsed); err != nil {
		return nil, err
	}

	if strings.TrimSpace(parsed.FirstQuestion) == "" {
		return nil, &gemini.SchemaError{Field: "firstQuestion", Reason: "missing or empty"}
	}
	fit, ok := coerceFloat(parsed.FitScore)
	if !ok {
		return nil, &gemini.SchemaError{Field: "fitScore", Reason: "not numeric"}
	}

	analysis := &ResumeAnalysis{
		ResumeSummary: strings.TrimSpace(parsed.ResumeSummary),
		FitScore:      clampInt(roundToInt(fit), 0, 100),
		FitReason:     strings.TrimSpace(parsed.FitReason),
		FirstQuestion: strings.TrimSpace(parsed.FirstQuestion),
	}

	s.log.Info("interview started",
		zap.String("job_title", jobTitle),
		zap.Int("fit_score", analysis.FitScore),
	)

	return analysis, nil
}

// NextTurn runs one question/answer round over the caller-held transcript.
// Exactly one of NextQuestion or Done is set on the result. When the model
// (or the round cap) terminates the interview, scoring runs before the
// result is returned so the terminal payload already carries the scores
// when they could be produced.
func (s *Service) NextTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if strings.TrimSpace(req.ResumeSummary) == "" || len(req.Messages) == 0 {
		return nil, fmt.Errorf("resumeSummary and a non-empty messages array are required")
	}

	if countAnswers(req.Messages) >= s.maxRounds {
		s.log.Info("round cap reached, forcing termination", zap.Int("max_rounds", s.maxRounds))
		result := &TurnResult{Done: true}
		s.score(ctx, req, result)
		if result.ClosingMessage == "" {
			result.ClosingMessage = "Thank you for your time. We'll be in touch."
		}
		return result, nil
	}

	prompt := NextQuestionPrompt(req.ResumeSummary, req.JobTitle, req.JobDescription, req.Messages)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		NextQuestion    string `json:"nextQuestion"`
		Done            bool   `json:"done"`
		ClosingMessage  string `json:"closingMessage"`
		OverallScore    any    `json:"overallScore"`
		OverallFeedback string `json:"overallFeedback"`
	}
	if err := gemini.DecodeJSON(raw, &parsed); err != nil {
		return nil, err
	}

	if !parsed.Done {
		question := strings.TrimSpace(parsed.NextQuestion)
		if question == "" {
			return nil, &gemini.SchemaError{Field: "nextQuestion", Reason: "missing while done is false"}
		}
		return &TurnResult{NextQuestion: question}, nil
	}

	result := &TurnResult{
		Done:            true,
		ClosingMessage:  strings.TrimSpace(parsed.ClosingMessage),
		OverallFeedback: strings.TrimSpace(parsed.OverallFeedback),
	}
	// Some model replies volunteer a score with the termination signal; keep
	// it as a seed that scoring may overwrite.
	if v, ok := coerceFloat(parsed.OverallScore); ok {
		score := clampInt(roundToInt(v), 0, 100)
		result.OverallScore = &score
	}

	s.score(ctx, req, result)

	if result.ClosingMessage == "" {
		result.ClosingMessage = "Thank you for your time. We'll be in touch."
	}

	return result, nil
}

func countAnswers(messages []Message) int {
	count := 0
	for _, m := range messages {
		if m.Role == RoleUser {
			count++
		}
	}
	return count
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
