// Package remote is the HTTP client for the learning API, the system of
// record for quizzes, lessons, exercises and challenges. This service only
// borrows its content for the duration of a session and reports outcomes
// back.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/model"
)

var (
	// ErrUpstreamUnavailable wraps transport failures reaching the learning
	// API (connection refused, timeout).
	ErrUpstreamUnavailable = errors.New("learning api unavailable")
	// ErrNotFound is returned when the learning API has no such resource.
	ErrNotFound = errors.New("resource not found upstream")
)

// UpstreamError is a non-2xx reply from the learning API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("learning api returned status %d", e.StatusCode)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// QuizQuestions fetches the full question set for a quiz, answer keys
// included. The result must never be forwarded to the browser as-is.
func (c *Client) QuizQuestions(ctx context.Context, token, quizID string) ([]model.Question, error) {
	var raw []model.RemoteQuestion
	path := fmt.Sprintf("/api/quiz/%s/questions", url.PathEscape(quizID))
	if err := c.getJSON(ctx, token, path, &raw); err != nil {
		return nil, err
	}
	return model.CanonicalQuestions(raw), nil
}

// Quiz fetches quiz metadata (title, time limit, passing score).
func (c *Client) Quiz(ctx context.Context, token, quizID string) (model.QuizInfo, error) {
	var raw model.RemoteQuizInfo
	path := fmt.Sprintf("/api/quiz/%s", url.PathEscape(quizID))
	if err := c.getJSON(ctx, token, path, &raw); err != nil {
		return model.QuizInfo{}, err
	}
	return raw.Canonical(), nil
}

// LessonExercises fetches the practice exercises of a lesson.
func (c *Client) LessonExercises(ctx context.Context, token, lessonID string) ([]model.Question, error) {
	var raw []model.RemoteQuestion
	path := fmt.Sprintf("/api/lessons/%s/exercises", url.PathEscape(lessonID))
	if err := c.getJSON(ctx, token, path, &raw); err != nil {
		return nil, err
	}
	return model.CanonicalQuestions(raw), nil
}

// RandomExercises fetches a random exercise sample for quick drills.
func (c *Client) RandomExercises(ctx context.Context, token string, count int) ([]model.Question, error) {
	var raw []model.RemoteQuestion
	path := "/api/exercises/random?count=" + strconv.Itoa(count)
	if err := c.getJSON(ctx, token, path, &raw); err != nil {
		return nil, err
	}
	return model.CanonicalQuestions(raw), nil
}

// Challenges fetches the caller's challenge board. Progress is per user, so
// the payload is never cached.
func (c *Client) Challenges(ctx context.Context, token string) ([]model.Challenge, error) {
	var raw []model.RemoteChallenge
	if err := c.getJSON(ctx, token, "/api/challenges", &raw); err != nil {
		return nil, err
	}
	return model.CanonicalChallenges(raw), nil
}

// ReportQuizResult records a finished quiz attempt upstream.
func (c *Client) ReportQuizResult(ctx context.Context, token, quizID string, report model.ResultReport) error {
	path := fmt.Sprintf("/api/quiz/%s/attempts", url.PathEscape(quizID))
	return c.postJSON(ctx, token, path, report)
}

// ReportLessonCompletion records a lesson crossing its completion threshold.
func (c *Client) ReportLessonCompletion(ctx context.Context, token string, completion model.LessonCompletion) error {
	path := fmt.Sprintf("/api/lessons/%s/complete", url.PathEscape(completion.LessonID))
	return c.postJSON(ctx, token, path, completion)
}

func (c *Client) getJSON(ctx context.Context, token, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, token, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding learning api response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, token, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding learning api request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, token, path, body)
	return err
}

func (c *Client) do(ctx context.Context, method, token, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building learning api request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Learning API unreachable")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.log.Warn().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Msg("Learning API error response")
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
