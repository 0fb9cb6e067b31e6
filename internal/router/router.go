// Package router wires the Gin route groups and their middleware.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vedalearn/session-backend/internal/config"
	"github.com/vedalearn/session-backend/internal/handler"
	"github.com/vedalearn/session-backend/internal/middleware"
	"github.com/vedalearn/session-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session   *handler.SessionHandler
	Lesson    *handler.LessonHandler
	Challenge *handler.ChallengeHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── API Group (Access Token Required) ─────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAccessToken())
	{
		// Quiz sessions.
		api.POST("/quizzes/:quiz_id/sessions", handlers.Session.CreateQuizSession)
		api.POST("/drills", handlers.Session.CreateDrill)
		api.GET("/sessions/:session_id", handlers.Session.GetSession)
		api.DELETE("/sessions/:session_id", handlers.Session.DeleteSession)
		api.POST("/sessions/:session_id/answers", handlers.Session.SubmitAnswer)
		api.POST("/sessions/:session_id/advance", handlers.Session.Advance)
		api.POST("/sessions/:session_id/finish", handlers.Session.FinishSession)
		api.GET("/sessions/:session_id/result", handlers.Session.GetResult)

		// Lesson practice.
		api.POST("/lessons/:lesson_id/practice", handlers.Lesson.StartPractice)
		api.GET("/practice/:tracker_id", handlers.Lesson.GetPractice)
		api.DELETE("/practice/:tracker_id", handlers.Lesson.DeletePractice)
		api.POST("/practice/:tracker_id/restart", handlers.Lesson.RestartPractice)
		api.POST("/practice/:tracker_id/answers", handlers.Lesson.SubmitPracticeAnswer)
		api.POST("/practice/:tracker_id/advance", handlers.Lesson.AdvancePractice)

		// Challenges.
		api.GET("/challenges", handlers.Challenge.ListChallenges)
	}

	// ─── WebSocket Group (token via ?token= query) ─────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAccessToken())
	{
		ws.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	return router
}
