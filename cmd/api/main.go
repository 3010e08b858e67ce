package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mentorlens/mentorlens-api/internal/config"
	"github.com/mentorlens/mentorlens-api/internal/database"
	"github.com/mentorlens/mentorlens-api/internal/handler"
	"github.com/mentorlens/mentorlens-api/internal/middleware"
	"github.com/mentorlens/mentorlens-api/internal/models"
	"github.com/mentorlens/mentorlens-api/internal/repository"
	"github.com/mentorlens/mentorlens-api/internal/router"
	"github.com/mentorlens/mentorlens-api/internal/service"
	"github.com/mentorlens/mentorlens-api/pkg/analysis"
	cloud "github.com/mentorlens/mentorlens-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Session{},
		&models.MetricScore{},
		&models.Badge{},
		&models.PointsLedgerEntry{},
		&models.FeedbackItem{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	analyzer, err := analysis.NewOpenAIAnalyzer(analysis.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create analysis client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	sessionRepo := repository.NewSessionRepository(db)
	scoreRepo := repository.NewMetricScoreRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	engine := service.NewGamificationEngine(service.GamificationConfig{
		BadgeThreshold: cfg.BadgeThreshold,
		PointsScalar:   cfg.PointsScalar,
	})

	pipeline := service.NewEvaluationPipeline(
		sessionRepo, scoreRepo, badgeRepo, pointsRepo,
		engine, analyzer, uploader, validate,
		natsConn, redisClient,
		service.PipelineOptions{AutoAdvance: true},
		logger,
	)
	projector := service.NewResultsProjector(
		sessionRepo, scoreRepo, badgeRepo, pointsRepo, feedbackRepo,
		redisClient, cfg.PointsCacheTTL, logger,
	)
	feedbackService := service.NewFeedbackService(feedbackRepo, validate, logger)

	sessionHandler := handler.NewSessionHandler(pipeline, projector, validate, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	ownerHandler := handler.NewOwnerHandler(projector, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SessionHandler:  sessionHandler,
		FeedbackHandler: feedbackHandler,
		OwnerHandler:    ownerHandler,
	})

	watchdogCtx, stopWatchdog := context.WithCancel(context.Background())
	defer stopWatchdog()
	go runWatchdog(watchdogCtx, pipeline, cfg.ProcessingTimeout, logger)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// runWatchdog periodically fails sessions stuck in processing longer than the
// configured timeout.
func runWatchdog(ctx context.Context, pipeline service.EvaluationPipeline, timeout time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			failed, err := pipeline.FailStale(ctx, time.Now().Add(-timeout))
			if err != nil {
				logger.Error().Err(err).Msg("watchdog sweep failed")
				continue
			}
			if failed > 0 {
				logger.Warn().Int("sessions", failed).Msg("watchdog failed stale sessions")
			}
		}
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
