package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedalearn/session-backend/internal/events"
	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/remote"
)

type recordingUpstream struct {
	mu       sync.Mutex
	requests []string
	bodies   []map[string]any
}

func (u *recordingUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)
	u.mu.Lock()
	u.requests = append(u.requests, r.Method+" "+r.URL.Path)
	u.bodies = append(u.bodies, body)
	u.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (u *recordingUpstream) seen() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.requests...)
}

func startReporter(t *testing.T) (*events.Bus, *recordingUpstream) {
	t.Helper()
	upstream := &recordingUpstream{}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	bus := events.NewBus(zerolog.Nop())
	t.Cleanup(func() { bus.Close() })

	client := remote.NewClient(srv.URL, 2*time.Second, zerolog.Nop())
	reporter := NewReporter(bus, client, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go reporter.Start(ctx)
	// Give the subscriptions a moment to attach before publishing.
	time.Sleep(20 * time.Millisecond)
	return bus, upstream
}

func TestReporter_ForwardsQuizResult(t *testing.T) {
	bus, upstream := startReporter(t)

	require.NoError(t, bus.Publish(events.TopicSessionFinished, events.QuizResultEvent{
		SessionID:   "s1",
		QuizID:      "42",
		AccessToken: "tok-1",
		Report:      model.ResultReport{ScorePercent: 80, CorrectCount: 4, TotalQuestions: 5, IsPassed: true},
		FinishedAt:  time.Now(),
	}))

	require.Eventually(t, func() bool {
		return len(upstream.seen()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "POST /api/quiz/42/attempts", upstream.seen()[0])
}

func TestReporter_ForwardsLessonCompletion(t *testing.T) {
	bus, upstream := startReporter(t)

	require.NoError(t, bus.Publish(events.TopicLessonCompleted, events.LessonCompletedEvent{
		TrackerID:   "t1",
		AccessToken: "tok-1",
		Completion:  model.LessonCompletion{LessonID: "lesson-7", ScorePercent: 75, CompletedAt: time.Now()},
	}))

	require.Eventually(t, func() bool {
		return len(upstream.seen()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "POST /api/lessons/lesson-7/complete", upstream.seen()[0])
}

func TestReporter_DropsUndecodableEvent(t *testing.T) {
	bus, upstream := startReporter(t)

	require.NoError(t, bus.Publish(events.TopicSessionFinished, "not an event object"))
	require.NoError(t, bus.Publish(events.TopicSessionFinished, events.QuizResultEvent{
		SessionID: "s2", QuizID: "9", AccessToken: "tok-1",
	}))

	// The bad payload is dropped; the good one still goes through.
	require.Eventually(t, func() bool {
		return len(upstream.seen()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "POST /api/quiz/9/attempts", upstream.seen()[0])
}
