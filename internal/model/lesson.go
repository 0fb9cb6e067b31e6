package model

import (
	"time"
)

// LessonCompletion is the one-shot report sent to the remote API the first
// time a lesson visit crosses the completion threshold.
type LessonCompletion struct {
	LessonID     string    `json:"lesson_id"`
	ScorePercent float64   `json:"score"`
	CompletedAt  time.Time `json:"completed_at"`
}

// TrackerSnapshot is the read model for a lesson practice run.
type TrackerSnapshot struct {
	ID               string              `json:"id"`
	LessonID         string              `json:"lesson_id"`
	Running          bool                `json:"running"`
	CurrentIndex     int                 `json:"current_index"`
	TotalExercises   int                 `json:"total_exercises"`
	CorrectCount     int                 `json:"correct_count"`
	CompletedCount   int                 `json:"completed_count"`
	ScorePercent     float64             `json:"score_percent"`
	IsLessonComplete bool                `json:"is_lesson_complete"`
	CurrentExercise  *QuestionForLearner `json:"current_exercise,omitempty"`
}
