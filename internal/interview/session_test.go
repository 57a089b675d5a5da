package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/ai/gemini"
	"github.com/voicehire/interview-server/internal/resume"
)

type reply struct {
	text string
	err  error
}

// stubGenerator replays scripted responses in order and records every
// prompt it was sent.
type stubGenerator struct {
	replies []reply
	prompts []string
	mimes   []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("stub: no scripted response left")
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	return next.text, next.err
}

func (s *stubGenerator) GenerateWithDocument(ctx context.Context, prompt, mimeType string, _ []byte) (string, error) {
	s.mimes = append(s.mimes, mimeType)
	return s.Generate(ctx, prompt)
}

func (s *stubGenerator) Model() string { return "stub-model" }

func textResume(content string) resume.Document {
	return resume.Document{MIMEType: "text/plain", Data: []byte(content), Text: content}
}

func intPtr(v int) *int { return &v }

func TestStartInterview(t *testing.T) {
	stub := &stubGenerator{replies: []reply{{text: `{
		"resumeSummary": "Five years of Go backend work.",
		"fitScore": 82,
		"fitReason": "Strong overlap with the stack.",
		"firstQuestion": "Tell me about your most recent service."
	}`}}}
	svc := NewService(stub, zap.NewNop())

	analysis, err := svc.StartInterview(context.Background(), textResume("resume body"), "Backend Engineer", "Build Go services")
	require.NoError(t, err)

	assert.Equal(t, 82, analysis.FitScore)
	assert.GreaterOrEqual(t, analysis.FitScore, 0)
	assert.LessOrEqual(t, analysis.FitScore, 100)
	assert.Equal(t, "Tell me about your most recent service.", analysis.FirstQuestion)
	assert.NotEmpty(t, analysis.ResumeSummary)

	// Plain-text resumes are inlined into the prompt rather than attached.
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "resume body")
	assert.Empty(t, stub.mimes)
}

func TestStartInterviewPDFGoesAsAttachment(t *testing.T) {
	stub := &stubGenerator{replies: []reply{{text: `{
		"resumeSummary": "s", "fitScore": 50, "fitReason": "r", "firstQuestion": "q"
	}`}}}
	svc := NewService(stub, zap.NewNop())

	doc := resume.Document{MIMEType: "application/pdf", Data: []byte("%PDF-1.4")}
	_, err := svc.StartInterview(context.Background(), doc, "Backend Engineer", "desc")
	require.NoError(t, err)

	require.Len(t, stub.mimes, 1)
	assert.Equal(t, "application/pdf", stub.mimes[0])
}

func TestStartInterviewValidation(t *testing.T) {
	t.Run("missing first question", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: `{"resumeSummary": "s", "fitScore": 50}`}}}
		svc := NewService(stub, zap.NewNop())

		_, err := svc.StartInterview(context.Background(), textResume("r"), "t", "d")

		var schemaErr *gemini.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "firstQuestion", schemaErr.Field)
	})

	t.Run("non-numeric fit score", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: `{"resumeSummary": "s", "fitScore": "great", "firstQuestion": "q"}`}}}
		svc := NewService(stub, zap.NewNop())

		_, err := svc.StartInterview(context.Background(), textResume("r"), "t", "d")

		var schemaErr *gemini.SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "fitScore", schemaErr.Field)
	})

	t.Run("stringified fit score is coerced", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: `{"resumeSummary": "s", "fitScore": "85", "firstQuestion": "q"}`}}}
		svc := NewService(stub, zap.NewNop())

		analysis, err := svc.StartInterview(context.Background(), textResume("r"), "t", "d")
		require.NoError(t, err)
		assert.Equal(t, 85, analysis.FitScore)
	})

	t.Run("out-of-range fit score is clamped", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: `{"resumeSummary": "s", "fitScore": 140, "firstQuestion": "q"}`}}}
		svc := NewService(stub, zap.NewNop())

		analysis, err := svc.StartInterview(context.Background(), textResume("r"), "t", "d")
		require.NoError(t, err)
		assert.Equal(t, 100, analysis.FitScore)
	})
}

func TestNextTurnFirstRound(t *testing.T) {
	// A transcript of one assistant message and zero answers is a valid
	// first round, never an already-finished interview.
	stub := &stubGenerator{replies: []reply{{text: `{"nextQuestion": "What draws you to this role?"}`}}}
	svc := NewService(stub, zap.NewNop())

	result, err := svc.NextTurn(context.Background(), TurnRequest{
		ResumeSummary: "summary",
		Messages:      []Message{{Role: RoleAssistant, Content: "First question?"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "What draws you to this role?", result.NextQuestion)
	assert.False(t, result.Done)
}

func TestNextTurnExactlyOneOutcome(t *testing.T) {
	t.Run("question branch", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: `{"nextQuestion": "q2"}`}}}
		svc := NewService(stub, zap.NewNop())

		result, err := svc.NextTurn(context.Background(), TurnRequest{
			ResumeSummary: "s",
			Messages: []Message{
				{Role: RoleAssistant, Content: "q1"},
				{Role: RoleUser, Content: "a1"},
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.NextQuestion)
		assert.False(t, result.Done)
	})

	t.Run("done branch", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{
			{text: `{"done": true, "closingMessage": "Bye", "overallFeedback": "Fine"}`},
			{text: `{"perQuestionScores": [{"index": 1, "score": 7, "reason": "ok"}], "answersAverage": 7}`},
		}}
		svc := NewService(stub, zap.NewNop())

		result, err := svc.NextTurn(context.Background(), TurnRequest{
			ResumeSummary: "s",
			Messages: []Message{
				{Role: RoleAssistant, Content: "q1"},
				{Role: RoleUser, Content: "a1"},
			},
		})
		require.NoError(t, err)
		assert.Empty(t, result.NextQuestion)
		assert.True(t, result.Done)
	})
}

func TestNextTurnDoneWithBlendedScore(t *testing.T) {
	// Five answers scored [8,6,7,9,5]: average 7.0 -> 70%, blended with a
	// fit score of 80 -> round(0.4*80 + 0.6*70) = 74.
	messages := []Message{{Role: RoleAssistant, Content: "q0"}}
	for i := 0; i < 5; i++ {
		messages = append(messages,
			Message{Role: RoleUser, Content: "answer"},
			Message{Role: RoleAssistant, Content: "question"},
		)
	}

	stub := &stubGenerator{replies: []reply{
		{text: `{"done": true, "closingMessage": "Thanks", "overallFeedback": "Good range of answers."}`},
		{text: `{"perQuestionScores": [
			{"index": 1, "score": 8, "reason": "r"},
			{"index": 3, "score": 6, "reason": "r"},
			{"index": 5, "score": 7, "reason": "r"},
			{"index": 7, "score": 9, "reason": "r"},
			{"index": 9, "score": 5, "reason": "r"}
		]}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result, err := svc.NextTurn(context.Background(), TurnRequest{
		ResumeSummary: "s",
		JobTitle:      "Backend Engineer",
		Messages:      messages,
		FitScore:      intPtr(80),
	})
	require.NoError(t, err)

	assert.True(t, result.Done)
	assert.Equal(t, "Thanks", result.ClosingMessage)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 74, *result.OverallScore)
	assert.Len(t, result.PerQuestionScores, 5)
	assert.Empty(t, result.ScoringError)

	// Feedback and a numeric score were both present after grading, so no
	// evaluation call was needed.
	assert.Len(t, stub.prompts, 2)
}

func TestNextTurnDoneWithoutAnswers(t *testing.T) {
	// Termination with zero candidate answers skips per-answer grading
	// entirely and falls back to the evaluation step.
	stub := &stubGenerator{replies: []reply{
		{text: `{"done": true, "closingMessage": "Bye"}`},
		{text: `{"done": true, "overallScore": 55, "overallFeedback": "No answers to judge.", "closingMessage": "Bye"}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result, err := svc.NextTurn(context.Background(), TurnRequest{
		ResumeSummary: "s",
		Messages:      []Message{{Role: RoleAssistant, Content: "q"}},
	})
	require.NoError(t, err)

	assert.True(t, result.Done)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 55, *result.OverallScore)
	assert.Empty(t, result.PerQuestionScores)
	assert.Len(t, stub.prompts, 2)
}

func TestNextTurnRoundCap(t *testing.T) {
	// At the hard stop the service terminates without asking the model for
	// another question: the first provider call is the grading prompt.
	messages := []Message{{Role: RoleAssistant, Content: "q0"}}
	for i := 0; i < defaultMaxRounds; i++ {
		messages = append(messages,
			Message{Role: RoleUser, Content: "answer"},
			Message{Role: RoleAssistant, Content: "question"},
		)
	}

	stub := &stubGenerator{replies: []reply{
		{text: `{"perQuestionScores": [{"index": 1, "score": 6, "reason": "r"}], "answersAverage": 6}`},
		{text: `{"overallScore": 60, "overallFeedback": "Decent.", "closingMessage": "Thanks for your time."}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result, err := svc.NextTurn(context.Background(), TurnRequest{
		ResumeSummary: "s",
		Messages:      messages,
	})
	require.NoError(t, err)

	assert.True(t, result.Done)
	assert.Empty(t, result.NextQuestion)
	assert.NotEmpty(t, result.ClosingMessage)
	require.NotEmpty(t, stub.prompts)
	assert.Contains(t, stub.prompts[0], "perQuestionScores")
}

func TestNextTurnValidation(t *testing.T) {
	svc := NewService(&stubGenerator{}, zap.NewNop())

	_, err := svc.NextTurn(context.Background(), TurnRequest{ResumeSummary: "", Messages: nil})
	require.Error(t, err)
}

func TestNextTurnProviderFailures(t *testing.T) {
	t.Run("empty response", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{err: gemini.ErrEmptyResponse}}}
		svc := NewService(stub, zap.NewNop())

		_, err := svc.NextTurn(context.Background(), TurnRequest{
			ResumeSummary: "s",
			Messages:      []Message{{Role: RoleAssistant, Content: "q"}},
		})
		require.ErrorIs(t, err, gemini.ErrEmptyResponse)
	})

	t.Run("invalid json", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: "not json"}}}
		svc := NewService(stub, zap.NewNop())

		_, err := svc.NextTurn(context.Background(), TurnRequest{
			ResumeSummary: "s",
			Messages:      []Message{{Role: RoleAssistant, Content: "q"}},
		})

		var invalid *gemini.InvalidJSONError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("neither question nor done", func(t *testing.T) {
		stub := &stubGenerator{replies: []reply{{text: `{"unexpected": true}`}}}
		svc := NewService(stub, zap.NewNop())

		_, err := svc.NextTurn(context.Background(), TurnRequest{
			ResumeSummary: "s",
			Messages:      []Message{{Role: RoleAssistant, Content: "q"}},
		})

		var schemaErr *gemini.SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})
}
