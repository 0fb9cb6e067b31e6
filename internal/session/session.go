// Package session holds the live assessment state machines: the timed quiz
// session and the untimed lesson practice tracker. All state is in-memory and
// dies with the owning view; the remote API only ever sees final summaries.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/scoring"
)

var (
	// ErrSessionFinished is returned by mutating operations on a FINISHED
	// session. The stored result is never touched by such calls.
	ErrSessionFinished = errors.New("session already finished")
	// ErrSessionNotStarted is returned when answering or advancing before Start.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrNoCurrentQuestion is returned when the question pointer has nothing
	// to grade or advance past.
	ErrNoCurrentQuestion = errors.New("no current question")
	// ErrNoResult is returned by Result before the session finishes.
	ErrNoResult = errors.New("session has no result yet")
)

// EventType tags the events a session broadcasts to subscribers.
type EventType string

const (
	EventTick     EventType = "tick"
	EventFinished EventType = "finished"
)

// Event is pushed to subscribers on every timer tick and once on finish.
type Event struct {
	Type             EventType     `json:"event"`
	RemainingSeconds int           `json:"remaining_seconds,omitempty"`
	Result           *model.Result `json:"result,omitempty"`
}

// FinishReason records what ended a session.
type FinishReason string

const (
	FinishCompleted   FinishReason = "completed"
	FinishTimeExpired FinishReason = "time_expired"
)

// Session drives one run through an ordered question set: question
// presentation, timing, answer capture, grading and the final result. All
// methods are safe for concurrent use; handlers and the timer goroutine both
// call in.
type Session struct {
	mu sync.Mutex

	id        string
	quizID    string
	questions []model.Question
	cfg       model.QuizConfig

	status       model.SessionStatus
	currentIndex int
	answers      map[string]model.AnswerRecord
	startedAt    time.Time
	remaining    int
	timer        *Countdown
	result       *model.Result
	finishReason FinishReason

	// tickInterval is overridden by tests to avoid real one-second waits.
	tickInterval time.Duration

	subs     []chan Event
	onFinish func(*model.Result, FinishReason)

	log zerolog.Logger
}

// New creates a session in the NOT_STARTED state. onFinish, if non-nil, is
// invoked exactly once (from whichever goroutine triggers the finish) after
// the result is stored; hosts use it to publish the fire-and-forget report.
func New(id, quizID string, questions []model.Question, cfg model.QuizConfig, log zerolog.Logger, onFinish func(*model.Result, FinishReason)) *Session {
	return &Session{
		id:           id,
		quizID:       quizID,
		questions:    questions,
		cfg:          cfg,
		status:       model.StatusNotStarted,
		answers:      make(map[string]model.AnswerRecord, len(questions)),
		tickInterval: time.Second,
		onFinish:     onFinish,
		log:          log.With().Str("session_id", id).Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// AutoAdvance reports whether submissions should advance without a review
// pause (the quick-drill flow).
func (s *Session) AutoAdvance() bool { return s.cfg.AutoAdvance }

// Start moves the session to IN_PROGRESS, records the start time and starts
// the countdown for timed sessions. A session over an empty question set
// finishes immediately with a 0% result. Starting twice is an error.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.status != model.StatusNotStarted {
		finished := s.status == model.StatusFinished
		s.mu.Unlock()
		if finished {
			return ErrSessionFinished
		}
		return errors.New("session already started")
	}

	s.startedAt = time.Now()
	s.status = model.StatusInProgress
	s.currentIndex = 0

	if len(s.questions) == 0 {
		s.finishLocked(FinishCompleted)
		s.mu.Unlock()
		return nil
	}

	if s.cfg.TimeLimitSeconds > 0 {
		s.remaining = s.cfg.TimeLimitSeconds
		s.timer = newCountdown(s.cfg.TimeLimitSeconds, s.tickInterval, s.handleTick, s.handleExpire)
		s.timer.Start()
	}
	s.mu.Unlock()
	return nil
}

// SubmitAnswer grades the current question, storing (or overwriting) its
// answer record, and moves to AWAITING_ADVANCE so the UI can show feedback.
// Re-submitting while the same question is current replaces the record and
// regrades; earlier questions are frozen once advanced past.
func (s *Session) SubmitAnswer(rawAnswer string) (model.AnswerFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case model.StatusFinished:
		return model.AnswerFeedback{}, ErrSessionFinished
	case model.StatusNotStarted:
		return model.AnswerFeedback{}, ErrSessionNotStarted
	}
	if s.currentIndex >= len(s.questions) {
		return model.AnswerFeedback{}, ErrNoCurrentQuestion
	}

	q := s.questions[s.currentIndex]
	correct, err := scoring.GradeAnswer(q, rawAnswer)

	fb := model.AnswerFeedback{
		QuestionID:    q.ID,
		IsCorrect:     correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
	if err != nil {
		s.log.Warn().Err(err).Str("question_id", q.ID).Msg("Unusable answer key, grading as incorrect")
		fb.Warning = err.Error()
	}

	s.answers[q.ID] = model.AnswerRecord{
		QuestionID:  q.ID,
		RawAnswer:   rawAnswer,
		IsCorrect:   correct,
		SubmittedAt: time.Now(),
	}
	s.status = model.StatusAwaitingAdvance
	return fb, nil
}

// Advance moves the pointer to the next question, or finishes the session
// when called on the last one.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case model.StatusFinished:
		return ErrSessionFinished
	case model.StatusNotStarted:
		return ErrSessionNotStarted
	}

	if s.currentIndex >= len(s.questions)-1 {
		s.finishLocked(FinishCompleted)
		return nil
	}
	s.currentIndex++
	s.status = model.StatusInProgress
	return nil
}

// Finish submits the session early: every question keeps whatever record it
// has and the result is computed now.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case model.StatusFinished:
		return ErrSessionFinished
	case model.StatusNotStarted:
		return ErrSessionNotStarted
	}
	s.finishLocked(FinishCompleted)
	return nil
}

// handleTick runs on the timer goroutine once per second.
func (s *Session) handleTick(remaining int) {
	s.mu.Lock()
	if s.status == model.StatusFinished {
		s.mu.Unlock()
		return
	}
	s.remaining = remaining
	subs := append([]chan Event(nil), s.subs...)
	s.mu.Unlock()

	broadcast(subs, Event{Type: EventTick, RemainingSeconds: remaining})
}

// handleExpire forces the FINISHED transition when time runs out; unanswered
// questions grade as incorrect.
func (s *Session) handleExpire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == model.StatusFinished {
		return
	}
	s.finishLocked(FinishTimeExpired)
}

// finishLocked computes and stores the immutable result exactly once,
// releases the timer and notifies subscribers and the host. Callers hold mu.
func (s *Session) finishLocked(reason FinishReason) {
	s.status = model.StatusFinished
	s.finishReason = reason
	if s.timer != nil {
		s.timer.Stop()
	}

	timeTaken := int(time.Since(s.startedAt).Seconds())
	if s.cfg.TimeLimitSeconds > 0 && timeTaken > s.cfg.TimeLimitSeconds {
		timeTaken = s.cfg.TimeLimitSeconds
	}
	s.result = scoring.GradeSession(s.questions, s.answers, s.cfg.PassingScorePercent, timeTaken)

	s.log.Info().
		Str("reason", string(reason)).
		Int("score_percent", s.result.ScorePercent).
		Int("correct", s.result.CorrectCount).
		Int("total", s.result.TotalQuestions).
		Bool("passed", s.result.IsPassed).
		Msg("Session finished")

	subs := append([]chan Event(nil), s.subs...)
	result := s.result
	onFinish := s.onFinish
	s.onFinish = nil

	// Deliver outside the lock; subscribers may call back into the session.
	go func() {
		broadcast(subs, Event{Type: EventFinished, Result: result})
		if onFinish != nil {
			onFinish(result, reason)
		}
	}()
}

func broadcast(subs []chan Event, ev Event) {
	for _, ch := range subs {
		select {
		case ch <- ev:
		default: // Slow subscriber: drop rather than block the timer.
		}
	}
}

// Subscribe registers a listener for tick and finished events. The returned
// cancel func must be called when the watching view goes away.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Stop releases the session's timer without finishing it. Used on view
// teardown; safe to call at any time.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Result returns the final summary, or ErrNoResult while the session is
// still running.
func (s *Session) Result() (*model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResult
	}
	return s.result, nil
}

// Status returns the current state.
func (s *Session) Status() model.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns the read model the UI renders from. The current question
// is stripped of its answer key while the session runs.
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.SessionSnapshot{
		ID:             s.id,
		QuizID:         s.quizID,
		Status:         s.status,
		CurrentIndex:   s.currentIndex,
		TotalQuestions: len(s.questions),
		AnsweredCount:  len(s.answers),
		StartedAt:      s.startedAt,
	}
	if s.cfg.TimeLimitSeconds > 0 && s.status != model.StatusNotStarted {
		remaining := s.remaining
		snap.TimeRemainingSeconds = &remaining
	}
	if s.status != model.StatusFinished && s.currentIndex < len(s.questions) {
		q := s.questions[s.currentIndex].ForLearner()
		snap.CurrentQuestion = &q
	}
	return snap
}
