package interview

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/voicehire/interview-server/internal/ai/gemini"
)

// Blending weights for the final score: resume fit on paper vs. how the
// candidate actually answered.
const (
	fitWeight     = 0.4
	answersWeight = 0.6
)

// score runs the post-termination aggregation: per-answer grading, the
// fit/answers blend, and the narrative evaluation. Scoring is best-effort
// enrichment - every failure is swallowed into result.ScoringError and the
// terminal payload still goes out with its closing message.
func (s *Service) score(ctx context.Context, req TurnRequest, result *TurnResult) {
	if countAnswers(req.Messages) > 0 {
		if err := s.scoreAnswers(ctx, req, result); err != nil {
			s.log.Warn("per-question scoring failed", zap.Error(err))
			result.ScoringError = err.Error()
		}
	}

	if result.OverallScore == nil || result.OverallFeedback == "" {
		if err := s.evaluate(ctx, req, result); err != nil {
			s.log.Warn("overall evaluation failed", zap.Error(err))
			if result.ScoringError == "" {
				result.ScoringError = err.Error()
			}
		}
	}
}

// scoreAnswers asks the model to grade every candidate answer, derives the
// average when the model omits it, and blends with the resume fit score.
func (s *Service) scoreAnswers(ctx context.Context, req TurnRequest, result *TurnResult) error {
	prompt := ScoringPrompt(req.ResumeSummary, req.JobTitle, req.JobDescription, req.Messages)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	var parsed struct {
		PerQuestionScores []struct {
			Index  any    `json:"index"`
			Score  any    `json:"score"`
			Reason string `json:"reason"`
		} `json:"perQuestionScores"`
		AnswersAverage any `json:"answersAverage"`
	}
	if err := gemini.DecodeJSON(raw, &parsed); err != nil {
		return err
	}

	scores := make([]QuestionScore, 0, len(parsed.PerQuestionScores))
	for _, qs := range parsed.PerQuestionScores {
		index, _ := coerceFloat(qs.Index)
		score, ok := coerceFloat(qs.Score)
		if !ok {
			score = 0 // non-numeric grades count as zero
		}
		scores = append(scores, QuestionScore{
			QuestionIndex: roundToInt(index),
			Score:         clampFloat(score, 0, 10),
			Reason:        strings.TrimSpace(qs.Reason),
		})
	}
	result.PerQuestionScores = scores

	average, ok := coerceFloat(parsed.AnswersAverage)
	if !ok {
		if len(scores) == 0 {
			return &gemini.SchemaError{Field: "perQuestionScores", Reason: "empty and no answersAverage"}
		}
		sum := 0.0
		for _, qs := range scores {
			sum += qs.Score
		}
		average = sum / float64(len(scores))
	}
	average = clampFloat(average, 0, 10)

	answersAvgPct := roundToInt(average / 10 * 100)

	overall := answersAvgPct
	if req.FitScore != nil {
		fit := clampInt(*req.FitScore, 0, 100)
		overall = roundToInt(fitWeight*float64(fit) + answersWeight*float64(answersAvgPct))
	}
	result.OverallScore = &overall

	return nil
}

// evaluate asks the model for the narrative wrap-up. Fields it returns
// overwrite what the per-answer step produced; the closing message only
// fills in when the termination payload did not carry one.
func (s *Service) evaluate(ctx context.Context, req TurnRequest, result *TurnResult) error {
	prompt := EvaluationPrompt(req.ResumeSummary, req.JobTitle, req.JobDescription, req.Messages)
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	var parsed struct {
		OverallScore    any    `json:"overallScore"`
		OverallFeedback string `json:"overallFeedback"`
		ClosingMessage  string `json:"closingMessage"`
	}
	if err := gemini.DecodeJSON(raw, &parsed); err != nil {
		return err
	}

	if v, ok := coerceFloat(parsed.OverallScore); ok {
		score := clampInt(roundToInt(v), 0, 100)
		result.OverallScore = &score
	}
	if feedback := strings.TrimSpace(parsed.OverallFeedback); feedback != "" {
		result.OverallFeedback = feedback
	}
	if result.ClosingMessage == "" {
		result.ClosingMessage = strings.TrimSpace(parsed.ClosingMessage)
	}

	return nil
}

func coerceFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}

func clampFloat(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
