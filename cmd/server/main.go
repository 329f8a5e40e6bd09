package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postflow/configs"
	"github.com/maheshrc27/postflow/internal/api/handlers"
	"github.com/maheshrc27/postflow/internal/api/middleware"
	job "github.com/maheshrc27/postflow/internal/jobs"
	"github.com/maheshrc27/postflow/internal/logger"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel)

	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is required")
	}

	mongoDB, err := repository.ConnectMongo(cfg.MongoURI, cfg.DatabaseName, logger.NewMongoMonitor())
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	var historyRepo repository.PostingHistoryRepository
	var pg *sql.DB
	if cfg.PostgresURI != "" {
		pg, err = openPostgres(cfg.PostgresURI)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		historyRepo = repository.NewPostingHistoryRepository(pg)
	} else {
		slog.Warn("POSTGRES_URI not set, posting history is disabled")
	}

	var tickLock job.TickLock
	var rdb *redis.Client
	if cfg.RedisURI != "" {
		opts, err := redisOptions(cfg.RedisURI)
		if err != nil {
			log.Fatalf("Invalid REDIS_URI: %v", err)
		}
		rdb = redis.NewClient(opts)
		tickLock = job.NewRedisTickLock(rdb, cfg.Scheduler.LockTTL)
	}

	var imageStore service.ImageStore
	if cfg.R2.Enabled() {
		r2, err := service.NewR2Service(context.Background(), cfg.R2)
		if err != nil {
			log.Fatalf("Failed to configure R2: %v", err)
		}
		imageStore = r2
	}

	postRepo := repository.NewPostRepository(mongoDB)
	socialAccountRepo := repository.NewSocialAccountRepository(mongoDB, cfg.SecretKey)
	notificationRepo := repository.NewNotificationRepository(mongoDB)

	publisherOpts := service.PublisherOptionsFrom(cfg.Platform)
	publishService := service.NewPublishService(len(models.SupportedPlatforms),
		service.NewTwitterService(cfg.Twitter, publisherOpts),
		service.NewFacebookService(cfg.Graph, publisherOpts),
		service.NewInstagramService(cfg.Graph, publisherOpts),
		service.NewLinkedInService(cfg.LinkedInURL, publisherOpts),
	)
	notificationService := service.NewNotificationService(notificationRepo)
	deliveryService := service.NewDeliveryService(postRepo, socialAccountRepo, historyRepo, publishService, notificationService)
	postService := service.NewPostService(postRepo, historyRepo, deliveryService, notificationService, imageStore)
	platformService := service.NewPlatformService(socialAccountRepo)

	publishJob := job.NewPublishScheduledJob(postRepo, deliveryService, tickLock, cfg.Scheduler.Concurrency)
	scheduler := job.NewPostScheduler(cfg.Scheduler.Interval, publishJob)

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled request error", "path", c.Path(), "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(cfg.SecretKey, cfg.CookieName)

	health := handlers.NewHealthHandler(scheduler)
	app.Get("/api/health", health.Health)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService)
	api.Post("/posts", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Post("/posts/:id/publish", post.PublishPost)
	api.Get("/posts/:id/history", post.PostHistory)

	platform := handlers.NewPlatformHandler(platformService)
	api.Post("/accounts", platform.AddSocialAccount)
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Delete("/accounts/:id", platform.RemoveSocialAccount)

	notification := handlers.NewNotificationHandler(notificationService)
	api.Get("/notifications", notification.List)
	api.Get("/notifications/unread-count", notification.UnreadCount)
	api.Put("/notifications/read-all", notification.MarkAllRead)
	api.Put("/notifications/:id/read", notification.MarkRead)
	api.Delete("/notifications/:id", notification.Remove)
	api.Post("/notifications", notification.Create)

	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("server is running", "port", cfg.Port)

	gracefulShutdown(app, scheduler, mongoDB.Client(), pg, rdb)
}

// redisOptions accepts either a redis:// URL or a bare host:port.
func redisOptions(uri string) (*redis.Options, error) {
	if strings.Contains(uri, "://") {
		return redis.ParseURL(uri)
	}
	return &redis.Options{Addr: uri}, nil
}

func openPostgres(uri string) (*sql.DB, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err := repository.EnsurePostingHistorySchema(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func gracefulShutdown(app *fiber.App, scheduler *job.PostScheduler, client *mongo.Client, pg *sql.DB, rdb *redis.Client) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := scheduler.Stop(ctx); err != nil {
		slog.Error("scheduler did not stop in time", "err", err)
	}

	if err := app.ShutdownWithContext(ctx); err != nil {
		slog.Error("failed to shut down server", "err", err)
	}

	if err := client.Disconnect(ctx); err != nil {
		slog.Error("failed to disconnect MongoDB", "err", err)
	}
	if pg != nil {
		if err := pg.Close(); err != nil {
			slog.Error("failed to close Postgres", "err", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close Redis", "err", err)
		}
	}
	slog.Info("server shutdown complete")
}
