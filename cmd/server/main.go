package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	"github.com/maheshrc27/postpilot/internal/instagram"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	postingHistoryRepo := repository.NewPostingHistoryRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	authorizer := instagram.NewAuthorizer(*cfg)
	if cfg.MockMode {
		log.Println("Mock mode enabled: Instagram calls are simulated")
	}

	postService := service.NewPostService(postRepo, socialAccountRepo)
	postingService := service.NewPostingService(*cfg, socialAccountRepo)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo, authorizer)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	publishJob := job.NewPublishJob(*cfg, postRepo, postingHistoryRepo, socialAccountRepo, postingService)
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, platformService)
	queueW := queue.NewQueue(postRepo, publishJob)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	platform := handlers.NewPlatformHandler(platformService, *cfg)
	app.Get("/auth/instagram", platform.AddSocialAccount)
	app.Get("/auth/instagram/callback", platform.CallbackHandler)

	cronHandler := handlers.NewCronHandler(*cfg, publishJob)
	app.Post("/cron/tick", cronHandler.Tick)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, postingService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Post("/posts/now", post.PostNow)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	history := handlers.NewHistoryHandler(postingHistoryRepo)
	api.Get("/history", history.ListHistory)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media", media.Upload)
	api.Get("/media", media.ListAssets)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", publishJob.Run)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSchedulePost, queueW.HandleSchedulePostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
