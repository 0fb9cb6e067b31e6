package model

import (
	"encoding/json"
	"time"
)

// SessionStatus enumerates assessment session states.
type SessionStatus string

const (
	StatusNotStarted      SessionStatus = "NOT_STARTED"
	StatusInProgress      SessionStatus = "IN_PROGRESS"
	StatusAwaitingAdvance SessionStatus = "AWAITING_ADVANCE"
	StatusFinished        SessionStatus = "FINISHED"
)

// QuizConfig carries the per-session settings taken from the remote quiz
// metadata (or service defaults when the metadata omits them).
type QuizConfig struct {
	// TimeLimitSeconds of 0 means the session is untimed.
	TimeLimitSeconds    int `json:"time_limit_seconds"`
	PassingScorePercent int `json:"passing_score_percent"`
	// AutoAdvance makes a submitted answer move straight to the next
	// question, for flows without a per-question review step (quick drills).
	AutoAdvance bool `json:"auto_advance"`
}

// AnswerRecord is a learner's stored response to one question within a
// session. At most one record exists per question; re-submission while the
// question is still current overwrites it.
type AnswerRecord struct {
	QuestionID  string    `json:"question_id"`
	RawAnswer   string    `json:"raw_answer"`
	IsCorrect   bool      `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AnswerFeedback is what the UI shows right after a submission.
type AnswerFeedback struct {
	QuestionID    string `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
	// Warning is set when the question's answer key is unusable (for
	// example a choice question whose correct answer matches no option).
	Warning string `json:"warning,omitempty"`
}

// QuestionResult is one row of the per-question review in a Result.
type QuestionResult struct {
	Question   Question `json:"question"`
	UserAnswer string   `json:"user_answer"`
	Answered   bool     `json:"answered"`
	IsCorrect  bool     `json:"is_correct"`
}

// Result is the immutable summary computed exactly once when a session
// reaches FINISHED.
type Result struct {
	ScorePercent     int              `json:"score_percent"`
	CorrectCount     int              `json:"correct_count"`
	TotalQuestions   int              `json:"total_questions"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
	IsPassed         bool             `json:"is_passed"`
	XPEarned         int              `json:"xp_earned"`
	PerQuestion      []QuestionResult `json:"per_question"`
}

// SessionSnapshot is the read model the UI renders from.
type SessionSnapshot struct {
	ID             string        `json:"id"`
	QuizID         string        `json:"quiz_id,omitempty"`
	Status         SessionStatus `json:"status"`
	CurrentIndex   int           `json:"current_index"`
	TotalQuestions int           `json:"total_questions"`
	AnsweredCount  int           `json:"answered_count"`
	// TimeRemainingSeconds is nil for untimed sessions.
	TimeRemainingSeconds *int                `json:"time_remaining_seconds,omitempty"`
	StartedAt            time.Time           `json:"started_at"`
	CurrentQuestion      *QuestionForLearner `json:"current_question,omitempty"`
}

// SubmitAnswerRequest is the payload for answering the current question.
type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// CreateSessionRequest optionally overrides the remote quiz settings.
type CreateSessionRequest struct {
	TimeLimitSeconds    *int `json:"time_limit_seconds" binding:"omitempty,min=0,max=28800"`
	PassingScorePercent *int `json:"passing_score_percent" binding:"omitempty,min=0,max=100"`
}

// QuizInfo is the remote quiz metadata the dashboard lists and the session
// factory configures from.
type QuizInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	// TimeLimitSeconds is derived from the remote time_limit (minutes).
	TimeLimitSeconds    int  `json:"time_limit_seconds"`
	PassingScorePercent int  `json:"passing_score_percent"`
	XPReward            int  `json:"xp_reward"`
	IsUnlocked          bool `json:"is_unlocked"`
	IsCompleted         bool `json:"is_completed"`
}

// RemoteQuizInfo mirrors the learning API's quiz metadata. The remote time
// limit is expressed in minutes.
type RemoteQuizInfo struct {
	ID               json.Number `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Difficulty       string      `json:"difficulty"`
	TimeLimitMinutes int         `json:"time_limit"`
	PassingScore     int         `json:"passing_score"`
	XPReward         int         `json:"xp_reward"`
	IsUnlocked       bool        `json:"is_unlocked"`
	IsCompleted      bool        `json:"is_completed"`
}

// Canonical converts remote quiz metadata into the internal form.
func (rq RemoteQuizInfo) Canonical() QuizInfo {
	return QuizInfo{
		ID:                  rq.ID.String(),
		Title:               rq.Title,
		Description:         rq.Description,
		Difficulty:          rq.Difficulty,
		TimeLimitSeconds:    rq.TimeLimitMinutes * 60,
		PassingScorePercent: rq.PassingScore,
		XPReward:            rq.XPReward,
		IsUnlocked:          rq.IsUnlocked,
		IsCompleted:         rq.IsCompleted,
	}
}

// ResultReport is the fire-and-forget payload sent to the remote API after a
// quiz session finishes.
type ResultReport struct {
	ScorePercent     int       `json:"score_percent"`
	CorrectCount     int       `json:"correct_count"`
	TotalQuestions   int       `json:"total_questions"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	IsPassed         bool      `json:"is_passed"`
	CompletedAt      time.Time `json:"completed_at"`
}
