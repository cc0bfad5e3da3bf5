package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/api/handlers"
	"github.com/yoockh/mockmate/internal/api/middleware"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Session   *handlers.SessionHandler
	Question  *handlers.QuestionHandler
	User      *handlers.UserHandler
	Analytics *handlers.AnalyticsHandler
	WS        *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public auth
	r.POST("/auth/signup", d.Auth.Signup)
	r.POST("/auth/login", d.Auth.Login)
	r.POST("/auth/oauth", d.Auth.OAuth)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/sessions", d.Session.Create)
	auth.GET("/sessions", d.Session.List)
	auth.GET("/sessions/:session_id", d.Session.Get)
	auth.POST("/sessions/:session_id/interact", d.Session.Interact)
	auth.POST("/sessions/:session_id/answer", d.Session.Answer)
	auth.PATCH("/sessions/:session_id/status", d.Session.UpdateStatus)

	auth.GET("/questions", d.Question.List)
	auth.GET("/questions/:question_id", d.Question.Get)

	// WebSocket
	auth.GET("/ws/sessions/:session_id", d.WS.SessionStatusWS)

	// Admin-only
	admin := auth.Group("/")
	admin.Use(middleware.RequireAdmin())

	admin.PATCH("/sessions/:session_id/publish", d.Session.Publish)
	admin.POST("/sessions/:session_id/evaluate", d.Session.Evaluate)

	admin.POST("/questions", d.Question.Create)
	admin.PUT("/questions/:question_id", d.Question.Update)
	admin.DELETE("/questions/:question_id", d.Question.Delete)
	admin.POST("/questions/import", d.Question.Import)

	admin.GET("/users", d.User.List)
	admin.PATCH("/users/:user_id/ban", d.User.Ban)
	admin.PATCH("/users/:user_id/unban", d.User.Unban)

	admin.GET("/analytics/overview", d.Analytics.Overview)
}
