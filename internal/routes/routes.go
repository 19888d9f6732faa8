package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsefit/reconciler/internal/handlers"
	"github.com/pulsefit/reconciler/internal/jobs"
)

func RegisterRoutes(app *fiber.App, registry *jobs.Registry) {
	jobHandler := handlers.NewJobHandler(registry)

	internal := app.Group("/internal")

	jobGroup := internal.Group("/jobs")
	jobGroup.Post("/orphan-cleanup", jobHandler.TriggerOrphanCleanup)
	jobGroup.Post("/missed-sweep", jobHandler.TriggerMissedSweep)
	jobGroup.Post("/reschedule", jobHandler.TriggerReschedule)
}
