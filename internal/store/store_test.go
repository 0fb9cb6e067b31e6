package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/session"
)

func newSession(id string) *session.Session {
	qs := []model.Question{
		{ID: "q1", Prompt: "2 + 2?", Kind: model.KindNumeric, CorrectAnswer: "4", XPWeight: 1},
	}
	return session.New(id, "quiz-1", qs, model.QuizConfig{PassingScorePercent: 60}, zerolog.Nop(), nil)
}

func TestStore_SessionRoundTrip(t *testing.T) {
	s := New()
	s.PutSession(newSession("s1"))

	got, ok := s.Session("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", got.ID())

	_, ok = s.Session("missing")
	assert.False(t, ok)

	assert.True(t, s.DeleteSession("s1"))
	assert.False(t, s.DeleteSession("s1"))
	_, ok = s.Session("s1")
	assert.False(t, ok)
}

func TestStore_TrackerRoundTrip(t *testing.T) {
	s := New()
	tr := session.NewLessonTracker("t1", "lesson-1", []model.Question{
		{ID: "e1", Prompt: "5 - 2?", Kind: model.KindNumeric, CorrectAnswer: "3", XPWeight: 1},
	}, zerolog.Nop())
	s.PutTracker(tr)

	got, ok := s.Tracker("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID())

	assert.True(t, s.DeleteTracker("t1"))
	assert.False(t, s.DeleteTracker("t1"))
}

func TestStore_CloseClearsEverything(t *testing.T) {
	s := New()
	s.PutSession(newSession("s1"))
	s.Close()

	_, ok := s.Session("s1")
	assert.False(t, ok)
}
