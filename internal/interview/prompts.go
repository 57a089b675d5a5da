package interview

import (
	"fmt"
	"strings"

	_ "embed"

	"gopkg.in/yaml.v3"
)

// Prompt templates live in prompts.yaml so wording can be tuned without
// touching code. Placeholders are {{UPPER_SNAKE}} tokens.
//
//go:embed prompts.yaml
var promptsYAML []byte

type promptSet struct {
	Analysis     string `yaml:"analysis"`
	NextQuestion string `yaml:"next_question"`
	Scoring      string `yaml:"scoring"`
	Evaluation   string `yaml:"evaluation"`
}

var prompts = mustLoadPrompts()

func mustLoadPrompts() promptSet {
	var set promptSet
	if err := yaml.Unmarshal(promptsYAML, &set); err != nil {
		panic(fmt.Sprintf("interview: invalid prompts.yaml: %v", err))
	}
	return set
}

// AnalysisPrompt builds the resume analysis request. The resume document
// itself travels separately (inline attachment or prepended text).
func AnalysisPrompt(jobTitle, jobDescription string) string {
	return render(prompts.Analysis, map[string]string{
		"JOB_TITLE":       jobTitle,
		"JOB_DESCRIPTION": jobDescription,
	})
}

// NextQuestionPrompt builds the follow-up question request from the full
// transcript so far.
func NextQuestionPrompt(resumeSummary, jobTitle, jobDescription string, messages []Message) string {
	return render(prompts.NextQuestion, map[string]string{
		"RESUME_SUMMARY":  resumeSummary,
		"JOB_TITLE":       jobTitle,
		"JOB_DESCRIPTION": jobDescription,
		"CONVERSATION":    RenderTranscript(messages),
	})
}

// ScoringPrompt builds the per-answer grading request.
func ScoringPrompt(resumeSummary, jobTitle, jobDescription string, messages []Message) string {
	return render(prompts.Scoring, map[string]string{
		"RESUME_SUMMARY":  resumeSummary,
		"JOB_TITLE":       jobTitle,
		"JOB_DESCRIPTION": jobDescription,
		"CONVERSATION":    renderIndexedTranscript(messages),
	})
}

// EvaluationPrompt builds the overall evaluation request.
func EvaluationPrompt(resumeSummary, jobTitle, jobDescription string, messages []Message) string {
	return render(prompts.Evaluation, map[string]string{
		"RESUME_SUMMARY":  resumeSummary,
		"JOB_TITLE":       jobTitle,
		"JOB_DESCRIPTION": jobDescription,
		"CONVERSATION":    RenderTranscript(messages),
	})
}

// RenderTranscript formats the transcript as alternating Interviewer: and
// Candidate: lines, the shape every follow-up prompt replays.
func RenderTranscript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "Candidate"
		if m.Role == RoleAssistant {
			speaker = "Interviewer"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Content))
	}
	return strings.Join(lines, "\n")
}

// renderIndexedTranscript prefixes each line with its transcript index so
// the grader can reference answers by position.
func renderIndexedTranscript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for i, m := range messages {
		speaker := "Candidate"
		if m.Role == RoleAssistant {
			speaker = "Interviewer"
		}
		lines = append(lines, fmt.Sprintf("[%d] %s: %s", i, speaker, m.Content))
	}
	return strings.Join(lines, "\n")
}

func render(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(out)
}
