package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vedalearn/session-backend/internal/catalog"
	"github.com/vedalearn/session-backend/internal/middleware"
	"github.com/vedalearn/session-backend/internal/model"
	"github.com/vedalearn/session-backend/internal/response"
)

// ChallengeHandler proxies the learner's challenge board from the learning
// API.
type ChallengeHandler struct {
	catalog *catalog.Service
	log     zerolog.Logger
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(catalogService *catalog.Service, log zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		catalog: catalogService,
		log:     log.With().Str("component", "challenge_handler").Logger(),
	}
}

// ListChallenges godoc
// GET /api/v1/challenges
// Returns the caller's challenges with upstream-computed progress.
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	token := middleware.GetToken(c)

	challenges, err := h.catalog.Challenges(c.Request.Context(), token)
	if err != nil {
		failUpstreamErr(c, err)
		return
	}
	if challenges == nil {
		challenges = []model.Challenge{}
	}

	response.Success(c, http.StatusOK, gin.H{"challenges": challenges})
}
