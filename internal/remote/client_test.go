package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedalearn/session-backend/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, zerolog.Nop())
}

func TestClient_QuizQuestionsNormalizesPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quiz/42/questions", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "question": "2 + 2?", "options": ["3", "4", "5"], "answer": "4"},
			{"id": 2, "prompt": "7 - 3?", "correct_answer": "4", "xp_reward": 5},
			{"id": 3, "answer": "ignored, no prompt"}
		]`))
	}))

	qs, err := client.QuizQuestions(context.Background(), "tok-1", "42")
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, model.KindMultipleChoice, qs[0].Kind)
	assert.Equal(t, []model.Option{{Key: "A", Text: "3"}, {Key: "B", Text: "4"}, {Key: "C", Text: "5"}}, qs[0].Options)
	assert.Equal(t, "4", qs[0].CorrectAnswer)
	assert.Equal(t, 1, qs[0].XPWeight)

	assert.Equal(t, model.KindNumeric, qs[1].Kind)
	assert.Equal(t, 5, qs[1].XPWeight)
}

func TestClient_QuizConvertsMinutesToSeconds(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quiz/7", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "title": "Fractions", "time_limit": 10, "passing_score": 70,
		})
	}))

	info, err := client.Quiz(context.Background(), "tok-1", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", info.ID)
	assert.Equal(t, 600, info.TimeLimitSeconds)
	assert.Equal(t, 70, info.PassingScorePercent)
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.Quiz(context.Background(), "tok-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_UpstreamErrorCarriesStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Challenges(context.Background(), "tok-1")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.StatusCode)
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, 500*time.Millisecond, zerolog.Nop())

	_, err := client.RandomExercises(context.Background(), "tok-1", 10)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClient_ReportQuizResultPostsPayload(t *testing.T) {
	var got model.ResultReport
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quiz/42/attempts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	report := model.ResultReport{ScorePercent: 80, CorrectCount: 4, TotalQuestions: 5, IsPassed: true}
	require.NoError(t, client.ReportQuizResult(context.Background(), "tok-1", "42", report))
	assert.Equal(t, 80, got.ScorePercent)
	assert.True(t, got.IsPassed)
}

func TestClient_ReportLessonCompletion(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lessons/lesson-7/complete", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 75.0, body["score"])
		w.WriteHeader(http.StatusOK)
	}))

	completion := model.LessonCompletion{LessonID: "lesson-7", ScorePercent: 75, CompletedAt: time.Now()}
	require.NoError(t, client.ReportLessonCompletion(context.Background(), "tok-1", completion))
}
