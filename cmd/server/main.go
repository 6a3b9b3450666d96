package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/linkpost/configs"
	"github.com/maheshrc27/linkpost/internal/api/handlers"
	"github.com/maheshrc27/linkpost/internal/api/middleware"
	"github.com/maheshrc27/linkpost/internal/database"
	"github.com/maheshrc27/linkpost/internal/jobs"
	"github.com/maheshrc27/linkpost/internal/linkedin"
	"github.com/maheshrc27/linkpost/internal/openrouter"
	"github.com/maheshrc27/linkpost/internal/queue"
	"github.com/maheshrc27/linkpost/internal/repository"
	"github.com/maheshrc27/linkpost/internal/service"
	"github.com/maheshrc27/linkpost/pkg/utils"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := database.Connect(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cipher, err := utils.NewTokenCipher([]byte(cfg.SecretKey))
	if err != nil {
		log.Fatalf("SECRET_KEY must be 16, 24 or 32 bytes: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("request failed", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	accountRepo := repository.NewLinkedInAccountRepository(db, cipher)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	linkedInClient := linkedin.NewClient(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURI, cfg.CallTimeout)
	openRouterClient := openrouter.NewClient(cfg.OpenRouterAPIKey)
	openRouterClient.SetModel(cfg.OpenRouterModel)

	refreshLocks := jobs.NewAccountLocks()
	sweeper := jobs.NewSweeper(postRepo, accountRepo, linkedInClient, linkedInClient, refreshLocks, cfg.CallTimeout)

	authService := service.NewAuthService(cfg, userRepo)
	userService := service.NewUserService(userRepo, accountRepo, postRepo)
	r2Service := service.NewR2Service(cfg.R2)
	postService := service.NewPostService(postRepo, accountRepo, r2Service, client)
	generatorService := service.NewGeneratorService(openRouterClient, postRepo)
	accountService := service.NewAccountService(cfg.SecretKey, linkedInClient, accountRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(cfg, apiKeyService)

	auth := handlers.NewAuthHandler(cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Post("/logout", auth.Logout)

	account := handlers.NewAccountHandler(cfg, accountService)
	app.Get("/auth/linkedin/callback", account.CallbackHandler)

	cronHandler := handlers.NewCronHandler(sweeper)
	app.Post("/cron/scheduled-posts", middleware.CronSecret(cfg.CronSecret), cronHandler.ScheduledPosts)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.DeleteUser)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/update", post.UpdatePost)
	api.Post("/posts/retry", post.RetryPost)
	api.Post("/posts/publish", post.PublishPost)
	api.Post("/posts/remove", post.RemovePost)

	generate := handlers.NewGenerateHandler(generatorService)
	api.Post("/posts/generate", generate.GeneratePost)

	api.Get("/accounts/connect", account.ConnectAccount)
	api.Get("/accounts", account.ListAccounts)
	api.Post("/accounts/remove", account.DeleteAccount)

	// cron jobs
	refreshTokenJob := jobs.NewTokenRefreshJob(accountRepo, linkedInClient, refreshLocks, cfg.CallTimeout)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	trigger := jobs.NewTrigger(sweeper, cfg.SweepInterval)
	if err := trigger.Start(); err != nil {
		log.Fatalf("Failed to start sweep trigger: %v", err)
	}

	// queue
	queueW := queue.NewQueue(sweeper)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		slog.Info("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("Server is running", "addr", cfg.ListenAddr)

	gracefulShutdown(app, db, func() {
		trigger.Stop()
		c.Stop()
		server.Shutdown()
	})
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, stopWorkers func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	stopWorkers()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	slog.Info("Server shutdown complete.")
}
