package models

import "time"

// JobStep records a completed step of a background job so that a retried job
// can skip work it has already committed.
type JobStep struct {
	JobKey      string    `json:"job_key"`
	StepName    string    `json:"step_name"`
	Result      []byte    `json:"result,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
