package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pulsefit/reconciler/internal/jobs"
)

type jobEnqueuer interface {
	EnqueueOrphanCleanup() (jobs.Task, error)
	EnqueueMissedSweep() (jobs.Task, error)
	EnqueueReschedule(payload jobs.ReschedulePayload) (jobs.Task, error)
}

// JobHandler exposes manual triggers for the background jobs. These endpoints
// are internal-only; they return the queued task id, not job results.
type JobHandler struct {
	registry jobEnqueuer
}

func NewJobHandler(registry jobEnqueuer) *JobHandler {
	return &JobHandler{registry: registry}
}

type rescheduleRequest struct {
	UserID     int64   `json:"user_id"`
	ScheduleID *int64  `json:"schedule_id"`
	WorkoutIDs []int64 `json:"workout_ids"`
	Strategy   string  `json:"strategy"`
}

func (h *JobHandler) TriggerOrphanCleanup(c *fiber.Ctx) error {
	task, err := h.registry.EnqueueOrphanCleanup()
	if err != nil {
		return enqueueError(c, err)
	}
	return queued(c, task)
}

func (h *JobHandler) TriggerMissedSweep(c *fiber.Ctx) error {
	task, err := h.registry.EnqueueMissedSweep()
	if err != nil {
		return enqueueError(c, err)
	}
	return queued(c, task)
}

func (h *JobHandler) TriggerReschedule(c *fiber.Ctx) error {
	var req rescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	if req.ScheduleID != nil && *req.ScheduleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "schedule_id must be positive"})
	}

	task, err := h.registry.EnqueueReschedule(jobs.ReschedulePayload{
		UserID:     req.UserID,
		ScheduleID: req.ScheduleID,
		WorkoutIDs: req.WorkoutIDs,
		Strategy:   req.Strategy,
	})
	if err != nil {
		return enqueueError(c, err)
	}
	return queued(c, task)
}

func queued(c *fiber.Ctx, task jobs.Task) error {
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "queued",
		"task_id": task.ID.String(),
		"queue":   task.Queue,
	})
}

func enqueueError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jobs.ErrQueueFull) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Queue is full, try again later"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enqueue job"})
}
