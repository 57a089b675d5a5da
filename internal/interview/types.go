package interview

// Message roles as they appear in the transcript and on the wire.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// Message is one turn of the interview transcript. Order is meaningful: the
// whole transcript is replayed verbatim into every follow-up prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResumeAnalysis is produced once per interview from the uploaded resume and
// the job posting. Immutable after creation.
type ResumeAnalysis struct {
	ResumeSummary string `json:"resumeSummary"`
	FitScore      int    `json:"fitScore"`
	FitReason     string `json:"fitReason"`
	FirstQuestion string `json:"firstQuestion"`
}

// QuestionScore is the model's grade for a single candidate answer.
type QuestionScore struct {
	QuestionIndex int     `json:"questionIndex"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
}

// TurnRequest carries the caller-held transcript for one question/answer
// round. The client is the transcript's source of truth; the server holds no
// interview state between requests.
type TurnRequest struct {
	ResumeSummary  string    `json:"resumeSummary"`
	JobTitle       string    `json:"jobTitle"`
	JobDescription string    `json:"jobDescription"`
	Messages       []Message `json:"messages"`

	// FitScore is the resume fit score from the analysis step, echoed back
	// by the client so the final score can blend it in.
	FitScore *int `json:"fitScore,omitempty"`
}

// TurnResult is the outcome of one round: exactly one of NextQuestion or
// Done is set.
type TurnResult struct {
	NextQuestion string `json:"nextQuestion,omitempty"`

	Done              bool            `json:"done,omitempty"`
	ClosingMessage    string          `json:"closingMessage,omitempty"`
	OverallScore      *int            `json:"overallScore,omitempty"`
	OverallFeedback   string          `json:"overallFeedback,omitempty"`
	PerQuestionScores []QuestionScore `json:"perQuestionScores,omitempty"`

	// ScoringError distinguishes "scoring failed" from "score of zero".
	// The interview itself still completes when this is set.
	ScoringError string `json:"scoringError,omitempty"`
}
