// Package handler holds the Gin HTTP handlers for the session API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/catalog"
	"github.com/vedalearn/session-backend/internal/config"
	"github.com/vedalearn/session-backend/internal/events"
	"github.com/vedalearn/session-backend/internal/middleware"
	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/remote"
	"github.com/vedalearn/session-backend/internal/response"
	"github.com/vedalearn/session-backend/internal/session"
	"github.com/vedalearn/session-backend/internal/store"
	"github.com/vedalearn/session-backend/internal/validator"
)

// SessionHandler handles quiz session lifecycle endpoints.
type SessionHandler struct {
	cfg     *config.Config
	catalog *catalog.Service
	store   *store.Store
	bus     *events.Bus
	log     zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(cfg *config.Config, catalogService *catalog.Service, st *store.Store, bus *events.Bus, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		cfg:     cfg,
		catalog: catalogService,
		store:   st,
		bus:     bus,
		log:     log.With().Str("component", "session_handler").Logger(),
	}
}

// CreateQuizSession godoc
// POST /api/v1/quizzes/:quiz_id/sessions
// Fetches the quiz from the learning API and starts a live session over it.
func (h *SessionHandler) CreateQuizSession(c *gin.Context) {
	token := middleware.GetToken(c)
	quizID := c.Param("quiz_id")

	// Both override fields are optional; an absent body means "use the quiz's
	// own settings" and must not trip the JSON binder's EOF error.
	var req model.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	cfg := model.QuizConfig{
		TimeLimitSeconds:    h.cfg.DefaultTimeLimitSeconds,
		PassingScorePercent: h.cfg.DefaultPassingScorePercent,
	}
	info, err := h.catalog.Quiz(c.Request.Context(), token, quizID)
	switch {
	case err == nil:
		if info.TimeLimitSeconds > 0 {
			cfg.TimeLimitSeconds = info.TimeLimitSeconds
		}
		if info.PassingScorePercent > 0 {
			cfg.PassingScorePercent = info.PassingScorePercent
		}
	case errors.Is(err, remote.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	default:
		// Metadata is an enhancement; the defaults carry the session.
		h.log.Warn().Err(err).Str("quiz_id", quizID).Msg("Quiz metadata unavailable, using defaults")
	}
	if req.TimeLimitSeconds != nil {
		cfg.TimeLimitSeconds = *req.TimeLimitSeconds
	}
	if req.PassingScorePercent != nil {
		cfg.PassingScorePercent = *req.PassingScorePercent
	}

	questions, err := h.catalog.QuizQuestions(c.Request.Context(), token, quizID)
	if err != nil {
		failUpstreamErr(c, err)
		return
	}
	if len(questions) == 0 {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		return
	}

	h.startSession(c, quizID, questions, cfg, token)
}

// CreateDrill godoc
// POST /api/v1/drills
// Starts a quick drill: a short timed session over random exercises where
// every submission advances immediately.
func (h *SessionHandler) CreateDrill(c *gin.Context) {
	token := middleware.GetToken(c)

	questions, err := h.catalog.RandomExercises(c.Request.Context(), token, h.cfg.DrillQuestionCount)
	if err != nil {
		failUpstreamErr(c, err)
		return
	}
	if len(questions) == 0 {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		return
	}

	cfg := model.QuizConfig{
		TimeLimitSeconds:    h.cfg.DrillTimeLimitSeconds,
		PassingScorePercent: h.cfg.DefaultPassingScorePercent,
		AutoAdvance:         true,
	}
	h.startSession(c, "", questions, cfg, token)
}

func (h *SessionHandler) startSession(c *gin.Context, quizID string, questions []model.Question, cfg model.QuizConfig, token string) {
	id := uuid.NewString()
	sess := session.New(id, quizID, questions, cfg, h.log, h.reportOnFinish(id, quizID, token))
	h.store.PutSession(sess)

	if err := sess.Start(); err != nil {
		h.store.DeleteSession(id)
		h.log.Error().Err(err).Str("session_id", id).Msg("Failed to start session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sess.Snapshot()})
}

// reportOnFinish builds the callback that publishes the finished session's
// result for the background reporter. Drills have no quiz ID and are not
// reported upstream.
func (h *SessionHandler) reportOnFinish(sessionID, quizID, token string) func(*model.Result, session.FinishReason) {
	if quizID == "" {
		return nil
	}
	return func(result *model.Result, reason session.FinishReason) {
		ev := events.QuizResultEvent{
			SessionID:   sessionID,
			QuizID:      quizID,
			AccessToken: token,
			Report: model.ResultReport{
				ScorePercent:     result.ScorePercent,
				CorrectCount:     result.CorrectCount,
				TotalQuestions:   result.TotalQuestions,
				TimeTakenSeconds: result.TimeTakenSeconds,
				IsPassed:         result.IsPassed,
				CompletedAt:      time.Now().UTC(),
			},
			FinishedAt: time.Now().UTC(),
		}
		if err := h.bus.Publish(events.TopicSessionFinished, ev); err != nil {
			h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to queue result report")
		}
	}
}

// GetSession godoc
// GET /api/v1/sessions/:session_id
// Returns the session snapshot (no answer keys).
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.store.Session(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// DeleteSession godoc
// DELETE /api/v1/sessions/:session_id
// Abandons a session; its timer stops and its state is discarded unreported.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if !h.store.DeleteSession(c.Param("session_id")) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// SubmitAnswer godoc
// POST /api/v1/sessions/:session_id/answers
// Grades the current question. Auto-advance sessions move straight to the
// next question; others wait for an explicit advance.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sess, ok := h.store.Session(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	feedback, err := sess.SubmitAnswer(req.Answer)
	if err != nil {
		failSessionErr(c, err)
		return
	}

	if sess.AutoAdvance() {
		if err := sess.Advance(); err != nil && !errors.Is(err, session.ErrSessionFinished) {
			failSessionErr(c, err)
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"feedback": feedback,
		"session":  sess.Snapshot(),
	})
}

// Advance godoc
// POST /api/v1/sessions/:session_id/advance
// Moves past the reviewed question; on the last question this finishes the
// session.
func (h *SessionHandler) Advance(c *gin.Context) {
	sess, ok := h.store.Session(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	if err := sess.Advance(); err != nil {
		failSessionErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// FinishSession godoc
// POST /api/v1/sessions/:session_id/finish
// Submits the session early; unanswered questions are graded incorrect.
func (h *SessionHandler) FinishSession(c *gin.Context) {
	sess, ok := h.store.Session(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	if err := sess.Finish(); err != nil {
		failSessionErr(c, err)
		return
	}

	result, err := sess.Result()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/sessions/:session_id/result
// Returns the graded result of a finished session.
func (h *SessionHandler) GetResult(c *gin.Context) {
	sess, ok := h.store.Session(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	result, err := sess.Result()
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

func failSessionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
	case errors.Is(err, session.ErrSessionNotStarted), errors.Is(err, session.ErrNoCurrentQuestion):
		response.Fail(c, http.StatusConflict, response.ErrInvalidState)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// failUpstreamErr maps learning API failures to response codes.
func failUpstreamErr(c *gin.Context, err error) {
	var ue *remote.UpstreamError
	switch {
	case errors.Is(err, remote.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, remote.ErrUpstreamUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamUnavailable)
	case errors.As(err, &ue):
		response.Fail(c, http.StatusBadGateway, response.ErrUpstreamRejected)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
