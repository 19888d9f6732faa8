package jobs

import "github.com/google/uuid"

const (
	QueueOrphanCleanup = "orphan-cleanup"
	QueueMissedSweep   = "missed-sweep"
	QueueReschedule    = "reschedule"
)

type Task struct {
	ID      uuid.UUID
	Queue   string
	Payload []byte
}

// Key is the idempotency key for step memoization. It is assigned at enqueue
// time and stays stable across retries, so a retried task sees the steps its
// earlier attempts already committed.
func (t Task) Key() string {
	return t.Queue + ":" + t.ID.String()
}
