// Package events carries finished-session outcomes from the HTTP handlers to
// the background reporter over an in-process watermill bus. Reporting is
// fire-and-forget: a learner's result page never waits on the learning API.
package events

import (
	"time"

	"github.com/vedalearn/session-backend/internal/model"
)

const (
	TopicSessionFinished = "session.finished"
	TopicLessonCompleted = "lesson.completed"
)

// QuizResultEvent is published when a quiz session reaches its final state.
type QuizResultEvent struct {
	SessionID   string             `json:"session_id"`
	QuizID      string             `json:"quiz_id"`
	AccessToken string             `json:"access_token"`
	Report      model.ResultReport `json:"report"`
	FinishedAt  time.Time          `json:"finished_at"`
}

// LessonCompletedEvent is published the first time a lesson practice run
// crosses the completion threshold.
type LessonCompletedEvent struct {
	TrackerID   string                 `json:"tracker_id"`
	AccessToken string                 `json:"access_token"`
	Completion  model.LessonCompletion `json:"completion"`
}
