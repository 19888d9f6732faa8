package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulsefit/reconciler/internal/jobs"
)

type stubEnqueuer struct {
	cleanupErr    error
	sweepErr      error
	rescheduleErr error
	lastPayload   *jobs.ReschedulePayload
}

func (s *stubEnqueuer) EnqueueOrphanCleanup() (jobs.Task, error) {
	if s.cleanupErr != nil {
		return jobs.Task{}, s.cleanupErr
	}
	return jobs.Task{ID: uuid.New(), Queue: jobs.QueueOrphanCleanup}, nil
}

func (s *stubEnqueuer) EnqueueMissedSweep() (jobs.Task, error) {
	if s.sweepErr != nil {
		return jobs.Task{}, s.sweepErr
	}
	return jobs.Task{ID: uuid.New(), Queue: jobs.QueueMissedSweep}, nil
}

func (s *stubEnqueuer) EnqueueReschedule(payload jobs.ReschedulePayload) (jobs.Task, error) {
	if s.rescheduleErr != nil {
		return jobs.Task{}, s.rescheduleErr
	}
	s.lastPayload = &payload
	return jobs.Task{ID: uuid.New(), Queue: jobs.QueueReschedule}, nil
}

func newTestApp(enqueuer *stubEnqueuer) *fiber.App {
	handler := &JobHandler{registry: enqueuer}
	app := fiber.New()
	app.Post("/internal/jobs/orphan-cleanup", handler.TriggerOrphanCleanup)
	app.Post("/internal/jobs/missed-sweep", handler.TriggerMissedSweep)
	app.Post("/internal/jobs/reschedule", handler.TriggerReschedule)
	return app
}

func TestTriggerOrphanCleanupReturnsAccepted(t *testing.T) {
	app := newTestApp(&stubEnqueuer{})

	req := httptest.NewRequest("POST", "/internal/jobs/orphan-cleanup", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "queued" || body["queue"] != jobs.QueueOrphanCleanup {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["task_id"] == "" {
		t.Fatal("expected a task id")
	}
}

func TestTriggerRescheduleValidatesUserID(t *testing.T) {
	app := newTestApp(&stubEnqueuer{})

	req := httptest.NewRequest("POST", "/internal/jobs/reschedule", strings.NewReader(`{"strategy":"next_available"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTriggerReschedulePassesPayload(t *testing.T) {
	enqueuer := &stubEnqueuer{}
	app := newTestApp(enqueuer)

	body := `{"user_id":7,"schedule_id":3,"workout_ids":[10,11],"strategy":"next_available"}`
	req := httptest.NewRequest("POST", "/internal/jobs/reschedule", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	if enqueuer.lastPayload == nil {
		t.Fatal("expected payload to reach the registry")
	}
	if enqueuer.lastPayload.UserID != 7 {
		t.Fatalf("expected user 7, got %d", enqueuer.lastPayload.UserID)
	}
	if enqueuer.lastPayload.ScheduleID == nil || *enqueuer.lastPayload.ScheduleID != 3 {
		t.Fatalf("expected schedule 3, got %v", enqueuer.lastPayload.ScheduleID)
	}
	if len(enqueuer.lastPayload.WorkoutIDs) != 2 {
		t.Fatalf("expected 2 workout ids, got %v", enqueuer.lastPayload.WorkoutIDs)
	}
}

func TestTriggerMissedSweepQueueFull(t *testing.T) {
	app := newTestApp(&stubEnqueuer{sweepErr: jobs.ErrQueueFull})

	req := httptest.NewRequest("POST", "/internal/jobs/missed-sweep", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
