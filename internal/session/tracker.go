package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/scoring"
)

// CompletionThresholdPercent is the percent-correct required before a lesson
// counts as complete.
const CompletionThresholdPercent = 65.0

// ErrPracticeNotRunning is returned when answering or advancing outside an
// active practice run.
var ErrPracticeNotRunning = errors.New("practice run not started")

// LessonTracker drives exercise-by-exercise practice inside one lesson
// visit. Unlike a quiz Session it has no timer and may be restarted; the
// correct-count and per-exercise completion keys persist across runs within
// the visit so a repeated correct answer never counts twice. Completion is
// sticky: once the 65% threshold is crossed the flag never drops, and the
// completion report is handed out exactly once.
type LessonTracker struct {
	mu sync.Mutex

	id        string
	lessonID  string
	exercises []model.Question

	running       bool
	currentIndex  int
	correctCount  int
	completedKeys map[string]struct{}
	complete      bool
	reported      bool

	log zerolog.Logger
}

// NewLessonTracker creates an idle tracker for one lesson visit. Navigating
// to a different lesson means discarding the tracker and creating a new one.
func NewLessonTracker(id, lessonID string, exercises []model.Question, log zerolog.Logger) *LessonTracker {
	return &LessonTracker{
		id:            id,
		lessonID:      lessonID,
		exercises:     exercises,
		completedKeys: make(map[string]struct{}, len(exercises)),
		log:           log.With().Str("tracker_id", id).Str("lesson_id", lessonID).Logger(),
	}
}

// ID returns the tracker identifier.
func (t *LessonTracker) ID() string { return t.id }

// Start begins (or restarts) a practice run at the first exercise. Completion
// bookkeeping from earlier runs of the same visit is kept.
func (t *LessonTracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.exercises) == 0 {
		return errors.New("lesson has no exercises")
	}
	t.running = true
	t.currentIndex = 0
	return nil
}

// SubmitAnswer grades the current exercise. The first correct answer for a
// given exercise increments the correct count and marks its completion key;
// later submissions of the same exercise, right or wrong, change nothing.
func (t *LessonTracker) SubmitAnswer(rawAnswer string) (model.AnswerFeedback, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return model.AnswerFeedback{}, ErrPracticeNotRunning
	}
	if t.currentIndex >= len(t.exercises) {
		return model.AnswerFeedback{}, ErrNoCurrentQuestion
	}

	ex := t.exercises[t.currentIndex]
	correct, err := scoring.GradeAnswer(ex, rawAnswer)

	fb := model.AnswerFeedback{
		QuestionID:    ex.ID,
		IsCorrect:     correct,
		CorrectAnswer: ex.CorrectAnswer,
		Explanation:   ex.Explanation,
	}
	if err != nil {
		t.log.Warn().Err(err).Str("exercise_id", ex.ID).Msg("Unusable answer key, grading as incorrect")
		fb.Warning = err.Error()
	}

	key := t.exerciseKey(t.currentIndex)
	if correct {
		if _, done := t.completedKeys[key]; !done {
			t.completedKeys[key] = struct{}{}
			t.correctCount++
		}
	}
	return fb, nil
}

// Advance moves to the next exercise. On the last exercise it ends the run
// and performs the completion check: crossing the 65% threshold for the
// first time this visit returns the one-shot completion report for the host
// to forward. Every later call returns nil.
func (t *LessonTracker) Advance() (*model.LessonCompletion, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil, ErrPracticeNotRunning
	}

	if t.currentIndex < len(t.exercises)-1 {
		t.currentIndex++
		return nil, nil
	}

	// Run finished; back to the lesson overview.
	t.running = false
	t.currentIndex = 0

	pct := t.scorePercentLocked()
	if pct >= CompletionThresholdPercent {
		t.complete = true
	}
	if t.complete && !t.reported {
		t.reported = true
		t.log.Info().Float64("score_percent", pct).Msg("Lesson completed")
		return &model.LessonCompletion{
			LessonID:     t.lessonID,
			ScorePercent: pct,
			CompletedAt:  time.Now(),
		}, nil
	}
	return nil, nil
}

// IsComplete reports the sticky completion flag.
func (t *LessonTracker) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete
}

// Snapshot returns the tracker's read model.
func (t *LessonTracker) Snapshot() model.TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := model.TrackerSnapshot{
		ID:               t.id,
		LessonID:         t.lessonID,
		Running:          t.running,
		CurrentIndex:     t.currentIndex,
		TotalExercises:   len(t.exercises),
		CorrectCount:     t.correctCount,
		CompletedCount:   len(t.completedKeys),
		ScorePercent:     t.scorePercentLocked(),
		IsLessonComplete: t.complete,
	}
	if t.running && t.currentIndex < len(t.exercises) {
		ex := t.exercises[t.currentIndex].ForLearner()
		snap.CurrentExercise = &ex
	}
	return snap
}

func (t *LessonTracker) scorePercentLocked() float64 {
	if len(t.exercises) == 0 {
		return 0
	}
	return 100 * float64(t.correctCount) / float64(len(t.exercises))
}

func (t *LessonTracker) exerciseKey(index int) string {
	return fmt.Sprintf("%s-%d", t.lessonID, index)
}
