package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func scoredRequest(answers int, fit *int) TurnRequest {
	messages := []Message{{Role: RoleAssistant, Content: "q0"}}
	for i := 0; i < answers; i++ {
		messages = append(messages,
			Message{Role: RoleUser, Content: "answer"},
			Message{Role: RoleAssistant, Content: "question"},
		)
	}
	return TurnRequest{
		ResumeSummary: "summary",
		JobTitle:      "title",
		Messages:      messages,
		FitScore:      fit,
	}
}

func TestScoreAnswersBlend(t *testing.T) {
	cases := []struct {
		name    string
		fit     *int
		average string
		want    int
	}{
		{name: "fit 80 average 7", fit: intPtr(80), average: "7", want: 74},
		{name: "fit 0 average 10", fit: intPtr(0), average: "10", want: 60},
		{name: "fit 100 average 0", fit: intPtr(100), average: "0", want: 40},
		{name: "no fit score falls back to answers only", fit: nil, average: "7", want: 70},
		{name: "fit above range is clamped first", fit: intPtr(250), average: "5", want: 70},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubGenerator{replies: []reply{
				{text: `{"perQuestionScores": [{"index": 1, "score": 5, "reason": "r"}], "answersAverage": ` + tc.average + `}`},
			}}
			svc := NewService(stub, zap.NewNop())

			result := &TurnResult{Done: true}
			require.NoError(t, svc.scoreAnswers(context.Background(), scoredRequest(1, tc.fit), result))

			require.NotNil(t, result.OverallScore)
			assert.Equal(t, tc.want, *result.OverallScore)
		})
	}
}

func TestScoreAnswersDerivesAverage(t *testing.T) {
	// No answersAverage in the reply: the mean of the per-question scores
	// stands in. (8+6)/2 = 7 -> 70%.
	stub := &stubGenerator{replies: []reply{
		{text: `{"perQuestionScores": [
			{"index": 1, "score": 8, "reason": "r"},
			{"index": 3, "score": 6, "reason": "r"}
		]}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result := &TurnResult{Done: true}
	require.NoError(t, svc.scoreAnswers(context.Background(), scoredRequest(2, nil), result))

	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 70, *result.OverallScore)
}

func TestScoreAnswersCoercion(t *testing.T) {
	// String-typed numbers coerce, non-numeric grades count as zero, and
	// out-of-range grades clamp to the 0-10 scale.
	stub := &stubGenerator{replies: []reply{
		{text: `{"perQuestionScores": [
			{"index": "1", "score": "8", "reason": "stringly typed"},
			{"index": 3, "score": "excellent", "reason": "not a number"},
			{"index": 5, "score": 14, "reason": "overshoot"}
		]}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result := &TurnResult{Done: true}
	require.NoError(t, svc.scoreAnswers(context.Background(), scoredRequest(3, nil), result))

	require.Len(t, result.PerQuestionScores, 3)
	assert.Equal(t, 1, result.PerQuestionScores[0].QuestionIndex)
	assert.Equal(t, 8.0, result.PerQuestionScores[0].Score)
	assert.Equal(t, 0.0, result.PerQuestionScores[1].Score)
	assert.Equal(t, 10.0, result.PerQuestionScores[2].Score)

	// Derived average (8+0+10)/3 = 6 -> 60%.
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 60, *result.OverallScore)
}

func TestScoreAnswersEmptyWithoutAverage(t *testing.T) {
	stub := &stubGenerator{replies: []reply{{text: `{"perQuestionScores": []}`}}}
	svc := NewService(stub, zap.NewNop())

	err := svc.scoreAnswers(context.Background(), scoredRequest(1, nil), &TurnResult{Done: true})
	require.Error(t, err)
}

func TestScoreSkipsGradingWithoutAnswers(t *testing.T) {
	// Zero candidate answers: no grading call is made, only the evaluation.
	stub := &stubGenerator{replies: []reply{
		{text: `{"overallScore": 40, "overallFeedback": "Never answered.", "closingMessage": "Bye"}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result := &TurnResult{Done: true}
	svc.score(context.Background(), scoredRequest(0, nil), result)

	assert.Len(t, stub.prompts, 1)
	assert.Empty(t, result.PerQuestionScores)
	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 40, *result.OverallScore)
}

func TestScoreSwallowsFailures(t *testing.T) {
	// Both scoring calls blow up; the terminal result survives with the
	// failure recorded instead of an error propagating.
	stub := &stubGenerator{replies: []reply{
		{err: errors.New("grading unavailable")},
		{err: errors.New("evaluation unavailable")},
	}}
	svc := NewService(stub, zap.NewNop())

	result := &TurnResult{Done: true, ClosingMessage: "Bye"}
	svc.score(context.Background(), scoredRequest(2, intPtr(70)), result)

	assert.True(t, result.Done)
	assert.Equal(t, "Bye", result.ClosingMessage)
	assert.Nil(t, result.OverallScore)
	assert.Equal(t, "grading unavailable", result.ScoringError)
}

func TestEvaluateOverwritesSeededScore(t *testing.T) {
	// A numeric overallScore from the evaluation replaces whatever the
	// termination payload or the blend produced.
	stub := &stubGenerator{replies: []reply{
		{text: `{"overallScore": 91, "overallFeedback": "Excellent throughout.", "closingMessage": "ignored"}`},
	}}
	svc := NewService(stub, zap.NewNop())

	seed := 60
	result := &TurnResult{Done: true, OverallScore: &seed, ClosingMessage: "Original closing"}
	require.NoError(t, svc.evaluate(context.Background(), scoredRequest(1, nil), result))

	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 91, *result.OverallScore)
	assert.Equal(t, "Excellent throughout.", result.OverallFeedback)
	// Closing message is fill-only, never an overwrite.
	assert.Equal(t, "Original closing", result.ClosingMessage)
}

func TestEvaluateFillsMissingClosingMessage(t *testing.T) {
	stub := &stubGenerator{replies: []reply{
		{text: `{"overallScore": 50, "overallFeedback": "f", "closingMessage": "Thanks for joining."}`},
	}}
	svc := NewService(stub, zap.NewNop())

	result := &TurnResult{Done: true}
	require.NoError(t, svc.evaluate(context.Background(), scoredRequest(1, nil), result))
	assert.Equal(t, "Thanks for joining.", result.ClosingMessage)
}

func TestEvaluateKeepsSeedOnNonNumericScore(t *testing.T) {
	stub := &stubGenerator{replies: []reply{
		{text: `{"overallScore": "strong", "overallFeedback": "f", "closingMessage": "c"}`},
	}}
	svc := NewService(stub, zap.NewNop())

	seed := 66
	result := &TurnResult{Done: true, OverallScore: &seed}
	require.NoError(t, svc.evaluate(context.Background(), scoredRequest(1, nil), result))

	require.NotNil(t, result.OverallScore)
	assert.Equal(t, 66, *result.OverallScore)
}

func TestCoerceFloat(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{name: "float", in: 7.5, want: 7.5, ok: true},
		{name: "int", in: 7, want: 7, ok: true},
		{name: "numeric string", in: " 7.5 ", want: 7.5, ok: true},
		{name: "empty string", in: "", ok: false},
		{name: "word", in: "seven", ok: false},
		{name: "nil", in: nil, ok: false},
		{name: "bool", in: true, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := coerceFloat(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
