package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pulsefit/reconciler/internal/config"
	"github.com/pulsefit/reconciler/internal/database"
	"github.com/pulsefit/reconciler/internal/jobs"
	"github.com/pulsefit/reconciler/internal/repository"
	"github.com/pulsefit/reconciler/internal/routes"
	"github.com/pulsefit/reconciler/internal/services"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 3. Wire repositories and services
	exerciseRepo := repository.NewExerciseRepository(database.DB)
	scheduleRepo := repository.NewScheduleRepository(database.DB)
	jobStepRepo := repository.NewJobStepRepository(database.DB)

	matcher := services.NewMatcherService(exerciseRepo)
	merger := services.NewMergeService(database.DB)
	cleanup := services.NewCleanupService(
		exerciseRepo,
		matcher,
		merger,
		cfg.CleanupBatchSize,
		cfg.CleanupBatchDelay,
		slogger,
	)
	rescheduler := services.NewRescheduleService(scheduleRepo, slogger)

	// 4. Start the job pool and cron triggers
	pool := jobs.NewPool(cfg.WorkerCount, cfg.JobMaxRetries, slogger)
	steps := jobs.NewStepRunner(jobStepRepo)
	registry := jobs.NewRegistry(pool, steps, cleanup, rescheduler, rescheduler, slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	scheduler, err := jobs.NewScheduler(registry, cfg.OrphanCleanupCron, cfg.MissedSweepCron, slogger)
	if err != nil {
		log.Fatalf("Failed to set up scheduler: %v", err)
	}
	scheduler.Start()

	// 5. Setup Fiber admin surface
	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, registry)

	go func() {
		log.Printf("Worker admin server starting on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 6. Shut down in order: cron first, then drain the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	scheduler.Stop()
	pool.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
