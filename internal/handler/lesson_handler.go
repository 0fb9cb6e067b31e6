package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/catalog"
	"github.com/vedalearn/session-backend/internal/events"
	"github.com/vedalearn/session-backend/internal/middleware"
	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/response"
	"github.com/vedalearn/session-backend/internal/session"
	"github.com/vedalearn/session-backend/internal/store"
	"github.com/vedalearn/session-backend/internal/validator"
)

// LessonHandler handles lesson practice endpoints.
type LessonHandler struct {
	catalog *catalog.Service
	store   *store.Store
	bus     *events.Bus
	log     zerolog.Logger
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(catalogService *catalog.Service, st *store.Store, bus *events.Bus, log zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		catalog: catalogService,
		store:   st,
		bus:     bus,
		log:     log.With().Str("component", "lesson_handler").Logger(),
	}
}

// StartPractice godoc
// POST /api/v1/lessons/:lesson_id/practice
// Fetches the lesson's exercises and starts an untimed practice run.
func (h *LessonHandler) StartPractice(c *gin.Context) {
	token := middleware.GetToken(c)
	lessonID := c.Param("lesson_id")

	exercises, err := h.catalog.LessonExercises(c.Request.Context(), token, lessonID)
	if err != nil {
		failUpstreamErr(c, err)
		return
	}
	if len(exercises) == 0 {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		return
	}

	tracker := session.NewLessonTracker(uuid.NewString(), lessonID, exercises, h.log)
	if err := tracker.Start(); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	h.store.PutTracker(tracker)

	response.Success(c, http.StatusCreated, gin.H{"practice": tracker.Snapshot()})
}

// GetPractice godoc
// GET /api/v1/practice/:tracker_id
// Returns the practice run snapshot.
func (h *LessonHandler) GetPractice(c *gin.Context) {
	tracker, ok := h.store.Tracker(c.Param("tracker_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"practice": tracker.Snapshot()})
}

// DeletePractice godoc
// DELETE /api/v1/practice/:tracker_id
// Discards a practice run on view teardown. Moving to a different lesson
// means deleting the old tracker and starting a fresh one; unreported
// completion bookkeeping is dropped with it.
func (h *LessonHandler) DeletePractice(c *gin.Context) {
	if !h.store.DeleteTracker(c.Param("tracker_id")) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// RestartPractice godoc
// POST /api/v1/practice/:tracker_id/restart
// Restarts the run at the first exercise. Earlier completion credit is kept.
func (h *LessonHandler) RestartPractice(c *gin.Context) {
	tracker, ok := h.store.Tracker(c.Param("tracker_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err := tracker.Start(); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"practice": tracker.Snapshot()})
}

// SubmitPracticeAnswer godoc
// POST /api/v1/practice/:tracker_id/answers
// Grades the current exercise with immediate feedback. Exercises may be
// re-answered; credit is only ever granted once per exercise.
func (h *LessonHandler) SubmitPracticeAnswer(c *gin.Context) {
	tracker, ok := h.store.Tracker(c.Param("tracker_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	feedback, err := tracker.SubmitAnswer(req.Answer)
	if err != nil {
		failTrackerErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"feedback": feedback,
		"practice": tracker.Snapshot(),
	})
}

// AdvancePractice godoc
// POST /api/v1/practice/:tracker_id/advance
// Moves to the next exercise; past the last one the run ends and, if the
// completion threshold was crossed for the first time, the completion is
// queued for upstream reporting.
func (h *LessonHandler) AdvancePractice(c *gin.Context) {
	token := middleware.GetToken(c)
	tracker, ok := h.store.Tracker(c.Param("tracker_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	completion, err := tracker.Advance()
	if err != nil {
		failTrackerErr(c, err)
		return
	}

	if completion != nil {
		ev := events.LessonCompletedEvent{
			TrackerID:   tracker.ID(),
			AccessToken: token,
			Completion:  *completion,
		}
		if err := h.bus.Publish(events.TopicLessonCompleted, ev); err != nil {
			h.log.Error().Err(err).Str("tracker_id", tracker.ID()).Msg("Failed to queue completion report")
		}
	}

	response.Success(c, http.StatusOK, gin.H{"practice": tracker.Snapshot()})
}

func failTrackerErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrPracticeNotRunning), errors.Is(err, session.ErrNoCurrentQuestion):
		response.Fail(c, http.StatusConflict, response.ErrInvalidState)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
