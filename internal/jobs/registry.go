package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pulsefit/reconciler/internal/services"
)

type cleanupRunner interface {
	Run(ctx context.Context) (*services.CleanupSummary, error)
}

type missedSweeper interface {
	SweepMissed(ctx context.Context) (*services.SweepSummary, error)
}

type rescheduler interface {
	RescheduleMissed(ctx context.Context, input services.RescheduleInput) ([]services.RescheduledWorkout, error)
}

type ReschedulePayload struct {
	UserID     int64   `json:"user_id"`
	ScheduleID *int64  `json:"schedule_id,omitempty"`
	WorkoutIDs []int64 `json:"workout_ids,omitempty"`
	Strategy   string  `json:"strategy,omitempty"`
}

// Registry binds the background jobs to the pool's queues and exposes the
// enqueue entry points used by the cron scheduler and the admin handlers.
type Registry struct {
	pool    *Pool
	steps   *StepRunner
	cleanup cleanupRunner
	sweeper missedSweeper
	resched rescheduler
	logger  *slog.Logger
}

func NewRegistry(
	pool *Pool,
	steps *StepRunner,
	cleanup cleanupRunner,
	sweeper missedSweeper,
	resched rescheduler,
	logger *slog.Logger,
) *Registry {
	r := &Registry{
		pool:    pool,
		steps:   steps,
		cleanup: cleanup,
		sweeper: sweeper,
		resched: resched,
		logger:  logger,
	}

	// Cleanup runs must never overlap; reschedules are partitioned per user
	// and safe to run concurrently.
	pool.Register(QueueOrphanCleanup, 1, r.handleOrphanCleanup)
	pool.Register(QueueMissedSweep, 1, r.handleMissedSweep)
	pool.Register(QueueReschedule, 0, r.handleReschedule)

	return r
}

func (r *Registry) EnqueueOrphanCleanup() (Task, error) {
	return r.pool.Enqueue(Task{Queue: QueueOrphanCleanup})
}

func (r *Registry) EnqueueMissedSweep() (Task, error) {
	return r.pool.Enqueue(Task{Queue: QueueMissedSweep})
}

func (r *Registry) EnqueueReschedule(payload ReschedulePayload) (Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Task{}, err
	}
	return r.pool.Enqueue(Task{Queue: QueueReschedule, Payload: body})
}

func (r *Registry) handleOrphanCleanup(ctx context.Context, task Task) error {
	raw, err := r.steps.Run(ctx, task.Key(), "cleanup", func(ctx context.Context) ([]byte, error) {
		summary, err := r.cleanup.Run(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})
	if err != nil {
		return err
	}

	var summary services.CleanupSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return fmt.Errorf("decode cleanup summary: %w", err)
	}

	r.logger.Info("orphan cleanup finished",
		"task_id", task.ID,
		"merged", summary.Merged,
		"skipped", summary.Skipped,
		"total_orphans", summary.TotalOrphans,
	)
	return nil
}

func (r *Registry) handleMissedSweep(ctx context.Context, task Task) error {
	raw, err := r.steps.Run(ctx, task.Key(), "sweep", func(ctx context.Context) ([]byte, error) {
		summary, err := r.sweeper.SweepMissed(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})
	if err != nil {
		return err
	}

	var summary services.SweepSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return fmt.Errorf("decode sweep summary: %w", err)
	}

	// One reschedule request per distinct affected user, enqueued inside a
	// memoized step so a retried sweep does not fan out twice.
	if _, err := r.steps.Run(ctx, task.Key(), "enqueue-reschedules", func(ctx context.Context) ([]byte, error) {
		for _, userID := range summary.UserIDs {
			if _, err := r.EnqueueReschedule(ReschedulePayload{UserID: userID}); err != nil {
				return nil, fmt.Errorf("enqueue reschedule for user %d: %w", userID, err)
			}
		}
		return nil, nil
	}); err != nil {
		return err
	}

	r.logger.Info("missed-workout sweep finished",
		"task_id", task.ID,
		"missed_count", summary.MissedCount,
		"users_notified", summary.UsersNotified,
	)
	return nil
}

func (r *Registry) handleReschedule(ctx context.Context, task Task) error {
	var payload ReschedulePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode reschedule payload: %w", err)
	}

	raw, err := r.steps.Run(ctx, task.Key(), "reschedule", func(ctx context.Context) ([]byte, error) {
		rescheduled, err := r.resched.RescheduleMissed(ctx, services.RescheduleInput{
			UserID:     payload.UserID,
			ScheduleID: payload.ScheduleID,
			WorkoutIDs: payload.WorkoutIDs,
			Strategy:   payload.Strategy,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(rescheduled)
	})
	if err != nil {
		return err
	}

	var rescheduled []services.RescheduledWorkout
	if err := json.Unmarshal(raw, &rescheduled); err != nil {
		return fmt.Errorf("decode reschedule result: %w", err)
	}

	r.logger.Info("reschedule finished",
		"task_id", task.ID,
		"user_id", payload.UserID,
		"rescheduled", rescheduled,
	)
	return nil
}
