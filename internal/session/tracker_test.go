package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedalearn/session-backend/internal/model"
)

func testExercises(n int) []model.Question {
	ex := make([]model.Question, n)
	for i := range ex {
		ex[i] = model.Question{
			ID:            string(rune('a' + i)),
			Prompt:        "3 x 3?",
			Kind:          model.KindNumeric,
			CorrectAnswer: "9",
			XPWeight:      1,
		}
	}
	return ex
}

func newTestTracker(t *testing.T, n int) *LessonTracker {
	t.Helper()
	return NewLessonTracker("t1", "lesson-7", testExercises(n), zerolog.Nop())
}

// runThrough answers each exercise with the given answers and advances after
// each one, returning the completion report from the final advance (if any).
func runThrough(t *testing.T, tr *LessonTracker, answers []string) *model.LessonCompletion {
	t.Helper()
	require.NoError(t, tr.Start())
	var completion *model.LessonCompletion
	for _, a := range answers {
		_, err := tr.SubmitAnswer(a)
		require.NoError(t, err)
		c, err := tr.Advance()
		require.NoError(t, err)
		if c != nil {
			completion = c
		}
	}
	return completion
}

func TestTracker_CompletionAtThreshold(t *testing.T) {
	tr := newTestTracker(t, 4)

	// 3 of 4 correct = 75% >= 65%.
	completion := runThrough(t, tr, []string{"9", "9", "9", "0"})

	require.NotNil(t, completion)
	assert.Equal(t, "lesson-7", completion.LessonID)
	assert.InDelta(t, 75.0, completion.ScorePercent, 0.01)
	assert.False(t, completion.CompletedAt.IsZero())
	assert.True(t, tr.IsComplete())

	snap := tr.Snapshot()
	assert.False(t, snap.Running)
	assert.Equal(t, 3, snap.CorrectCount)
	assert.Equal(t, 3, snap.CompletedCount)
}

func TestTracker_BelowThresholdNoCompletion(t *testing.T) {
	tr := newTestTracker(t, 4)

	// 2 of 4 correct = 50% < 65%.
	completion := runThrough(t, tr, []string{"9", "9", "0", "0"})

	assert.Nil(t, completion)
	assert.False(t, tr.IsComplete())
}

func TestTracker_RepeatedCorrectAnswerNeverDoubleCounts(t *testing.T) {
	tr := newTestTracker(t, 2)
	require.NoError(t, tr.Start())

	for i := 0; i < 3; i++ {
		fb, err := tr.SubmitAnswer("9")
		require.NoError(t, err)
		assert.True(t, fb.IsCorrect)
	}
	assert.Equal(t, 1, tr.Snapshot().CorrectCount)

	// A later wrong answer does not take the credit back either.
	_, err := tr.SubmitAnswer("0")
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Snapshot().CorrectCount)
}

func TestTracker_CompletionReportFiresOnce(t *testing.T) {
	tr := newTestTracker(t, 2)

	first := runThrough(t, tr, []string{"9", "9"})
	require.NotNil(t, first)

	// Second run through the same lesson visit: still complete, no report.
	second := runThrough(t, tr, []string{"9", "9"})
	assert.Nil(t, second)
	assert.True(t, tr.IsComplete())
}

func TestTracker_CompletionIsSticky(t *testing.T) {
	tr := newTestTracker(t, 2)

	completion := runThrough(t, tr, []string{"9", "9"})
	require.NotNil(t, completion)

	// A fully wrong re-run must not retract completion.
	again := runThrough(t, tr, []string{"0", "0"})
	assert.Nil(t, again)
	assert.True(t, tr.IsComplete())
	assert.True(t, tr.Snapshot().IsLessonComplete)
}

func TestTracker_OperationsOutsideRun(t *testing.T) {
	tr := newTestTracker(t, 1)

	_, err := tr.SubmitAnswer("9")
	assert.ErrorIs(t, err, ErrPracticeNotRunning)
	_, err = tr.Advance()
	assert.ErrorIs(t, err, ErrPracticeNotRunning)

	empty := NewLessonTracker("t2", "lesson-8", nil, zerolog.Nop())
	assert.Error(t, empty.Start())
}

func TestTracker_AdvanceWalksExercises(t *testing.T) {
	tr := newTestTracker(t, 3)
	require.NoError(t, tr.Start())

	snap := tr.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, 0, snap.CurrentIndex)
	require.NotNil(t, snap.CurrentExercise)

	_, err := tr.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Snapshot().CurrentIndex)
}
