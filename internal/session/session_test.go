package session

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedalearn/session-backend/internal/model"
)

func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            string(rune('a' + i)),
			Prompt:        "what is 1+1",
			Kind:          model.KindNumeric,
			CorrectAnswer: "2",
			Explanation:   "one plus one",
			XPWeight:      1,
		}
	}
	return qs
}

func newTestSession(t *testing.T, questions []model.Question, cfg model.QuizConfig, onFinish func(*model.Result, FinishReason)) *Session {
	t.Helper()
	s := New("s1", "quiz-1", questions, cfg, zerolog.Nop(), onFinish)
	s.tickInterval = testTick
	t.Cleanup(s.Stop)
	return s
}

func TestSession_HappyPath(t *testing.T) {
	s := newTestSession(t, testQuestions(5), model.QuizConfig{PassingScorePercent: 60}, nil)

	assert.Equal(t, model.StatusNotStarted, s.Status())
	require.NoError(t, s.Start())
	assert.Equal(t, model.StatusInProgress, s.Status())

	// 3 correct, 2 wrong.
	answers := []string{"2", "2", "2", "3", "5"}
	for i, a := range answers {
		fb, err := s.SubmitAnswer(a)
		require.NoError(t, err)
		assert.Equal(t, i < 3, fb.IsCorrect)
		assert.Equal(t, model.StatusAwaitingAdvance, s.Status())
		require.NoError(t, s.Advance())
	}

	assert.Equal(t, model.StatusFinished, s.Status())
	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 60, res.ScorePercent)
	assert.Equal(t, 3, res.CorrectCount)
	assert.Equal(t, 5, res.TotalQuestions)
	assert.True(t, res.IsPassed)
	require.Len(t, res.PerQuestion, 5)
	assert.Equal(t, "3", res.PerQuestion[3].UserAnswer)
}

func TestSession_ResubmitOverwritesCurrentAnswer(t *testing.T) {
	s := newTestSession(t, testQuestions(1), model.QuizConfig{}, nil)
	require.NoError(t, s.Start())

	fb, err := s.SubmitAnswer("7")
	require.NoError(t, err)
	assert.False(t, fb.IsCorrect)

	// Still on the same question: overwrite, regrade.
	fb, err = s.SubmitAnswer("2")
	require.NoError(t, err)
	assert.True(t, fb.IsCorrect)

	require.NoError(t, s.Advance())
	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 100, res.ScorePercent)
	require.Len(t, res.PerQuestion, 1)
	assert.Equal(t, "2", res.PerQuestion[0].UserAnswer)
}

func TestSession_AdvanceOnLastQuestionFinishes(t *testing.T) {
	s := newTestSession(t, testQuestions(2), model.QuizConfig{}, nil)
	require.NoError(t, s.Start())

	require.NoError(t, s.Advance())
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)

	require.NoError(t, s.Advance())
	assert.Equal(t, model.StatusFinished, s.Status())

	// Pointer never ran past the question list.
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Nil(t, snap.CurrentQuestion)
}

func TestSession_FinishedIsTerminal(t *testing.T) {
	s := newTestSession(t, testQuestions(1), model.QuizConfig{}, nil)
	require.NoError(t, s.Start())
	require.NoError(t, s.Finish())

	before, err := s.Result()
	require.NoError(t, err)

	_, err = s.SubmitAnswer("2")
	assert.ErrorIs(t, err, ErrSessionFinished)
	assert.ErrorIs(t, s.Advance(), ErrSessionFinished)
	assert.ErrorIs(t, s.Finish(), ErrSessionFinished)
	assert.ErrorIs(t, s.Start(), ErrSessionFinished)

	after, err := s.Result()
	require.NoError(t, err)
	assert.Same(t, before, after, "result must not be recomputed")
}

func TestSession_OperationsBeforeStart(t *testing.T) {
	s := newTestSession(t, testQuestions(1), model.QuizConfig{}, nil)

	_, err := s.SubmitAnswer("2")
	assert.ErrorIs(t, err, ErrSessionNotStarted)
	assert.ErrorIs(t, s.Advance(), ErrSessionNotStarted)
	_, err = s.Result()
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestSession_TimerExpiryForcesFinish(t *testing.T) {
	var mu sync.Mutex
	var gotReason FinishReason
	var gotResult *model.Result

	s := newTestSession(t, testQuestions(10), model.QuizConfig{TimeLimitSeconds: 3, PassingScorePercent: 50},
		func(res *model.Result, reason FinishReason) {
			mu.Lock()
			gotResult, gotReason = res, reason
			mu.Unlock()
		})
	require.NoError(t, s.Start())

	// Answer 4 of 10 correctly, then let the clock run out.
	for i := 0; i < 4; i++ {
		_, err := s.SubmitAnswer("2")
		require.NoError(t, err)
		require.NoError(t, s.Advance())
	}

	require.Eventually(t, func() bool {
		return s.Status() == model.StatusFinished
	}, time.Second, time.Millisecond)

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 4, res.CorrectCount)
	assert.Equal(t, 10, res.TotalQuestions)
	assert.Equal(t, 40, res.ScorePercent)
	assert.False(t, res.IsPassed)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotResult != nil
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, FinishTimeExpired, gotReason)
	assert.Equal(t, res, gotResult)
}

func TestSession_ZeroQuestionsFinishImmediately(t *testing.T) {
	finished := make(chan *model.Result, 1)
	s := newTestSession(t, nil, model.QuizConfig{PassingScorePercent: 60},
		func(res *model.Result, _ FinishReason) { finished <- res })

	require.NoError(t, s.Start())
	assert.Equal(t, model.StatusFinished, s.Status())

	res, err := s.Result()
	require.NoError(t, err)
	assert.Equal(t, 0, res.ScorePercent)
	assert.Equal(t, 0, res.TotalQuestions)
	assert.False(t, res.IsPassed)

	select {
	case got := <-finished:
		assert.Equal(t, res, got)
	case <-time.After(time.Second):
		t.Fatal("onFinish never fired")
	}
}

func TestSession_SubscribeSeesTicksAndFinish(t *testing.T) {
	s := newTestSession(t, testQuestions(1), model.QuizConfig{TimeLimitSeconds: 3}, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Start())

	var lastRemaining = 1 << 30
	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-ch:
			switch ev.Type {
			case EventTick:
				assert.Less(t, ev.RemainingSeconds, lastRemaining, "remaining must not increase")
				lastRemaining = ev.RemainingSeconds
			case EventFinished:
				require.NotNil(t, ev.Result)
				assert.Equal(t, 0, ev.Result.CorrectCount)
				return
			}
		case <-deadline:
			t.Fatal("never saw the finished event")
		}
	}
}

func TestSession_SnapshotHidesAnswerKey(t *testing.T) {
	qs := []model.Question{{
		ID:            "m1",
		Prompt:        "2 x 2?",
		Kind:          model.KindMultipleChoice,
		Options:       []model.Option{{Key: "A", Text: "2"}, {Key: "B", Text: "4"}},
		CorrectAnswer: "B",
		Explanation:   "basic",
		XPWeight:      1,
	}}
	s := newTestSession(t, qs, model.QuizConfig{}, nil)
	require.NoError(t, s.Start())

	snap := s.Snapshot()
	require.NotNil(t, snap.CurrentQuestion)
	assert.Equal(t, "m1", snap.CurrentQuestion.ID)
	assert.Len(t, snap.CurrentQuestion.Options, 2)
	assert.Nil(t, snap.TimeRemainingSeconds, "untimed session carries no remaining time")
}
