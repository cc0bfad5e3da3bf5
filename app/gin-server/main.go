package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yoockh/mockmate/config"
	"github.com/yoockh/mockmate/internal/api/handlers"
	"github.com/yoockh/mockmate/internal/api/middleware"
	"github.com/yoockh/mockmate/internal/api/routes"
	"github.com/yoockh/mockmate/internal/cache"
	applog "github.com/yoockh/mockmate/internal/logger"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/prompts"
	"github.com/yoockh/mockmate/internal/providers/llm"
	pgrepo "github.com/yoockh/mockmate/internal/repositories/postgres"
	"github.com/yoockh/mockmate/internal/services"
	"github.com/yoockh/mockmate/internal/storage"
	"github.com/yoockh/mockmate/internal/workers"
)

func main() {
	_ = godotenv.Load()
	l := applog.New()
	ctx := context.Background()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.PostgresDB.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.InterviewSession{},
		&models.InterviewQuestion{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	tpl, err := prompts.Load(os.Getenv("PROMPTS_FILE"))
	if err != nil {
		log.Fatalf("prompts load error: %v", err)
	}

	collab, err := llm.NewVertexGemini(ctx,
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
		os.Getenv("GOOGLE_CLOUD_LOCATION"),
		os.Getenv("GEMINI_MODEL"),
		tpl,
	)
	if err != nil {
		log.Fatalf("Vertex AI init error: %v", err)
	}
	defer collab.Close()

	// Repositories
	users := pgrepo.NewUserRepo(config.PostgresDB)
	questions := pgrepo.NewQuestionRepo(config.PostgresDB)
	sessions := pgrepo.NewSessionRepo(config.PostgresDB)
	iqs := pgrepo.NewInterviewQuestionRepo(config.PostgresDB)

	// Question bank imports come from an optional GCS bucket.
	var banks storage.Downloader
	if bucket := os.Getenv("QUESTION_BANK_BUCKET"); bucket != "" {
		d, err := storage.NewGCSDownloader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer d.Close()
		banks = d
	}

	// Services
	queue := workers.NewRedisEvaluationQueue(config.RedisClient, "")
	events := &workers.RedisStatusPublisher{Redis: config.RedisClient}

	evaluationSvc := services.NewEvaluationService(sessions, questions, iqs, collab, events, l)
	sessionSvc := services.NewSessionService(users, questions, sessions, iqs, collab, queue, l)
	questionSvc := services.NewQuestionService(questions, banks)
	userSvc := services.NewUserService(users, os.Getenv("JWT_SECRET"))
	analyticsSvc := services.NewAnalyticsService(sessions, cache.NewRedisCache(config.RedisClient), l)

	// Background evaluation workers
	pool := &workers.EvaluationWorkerPool{
		Redis:       config.RedisClient,
		Evaluations: evaluationSvc,
		Logger:      l,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool error: %v", err)
	}

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:      handlers.NewAuthHandler(userSvc),
		Session:   handlers.NewSessionHandler(sessionSvc, evaluationSvc),
		Question:  handlers.NewQuestionHandler(questionSvc),
		User:      handlers.NewUserHandler(userSvc),
		Analytics: handlers.NewAnalyticsHandler(analyticsSvc),
		WS:        handlers.NewWSHandler(sessionSvc, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
