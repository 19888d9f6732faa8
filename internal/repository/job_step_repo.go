package repository

import (
	"context"

	"github.com/pulsefit/reconciler/internal/models"
)

type JobStepRepository struct {
	db DBTX
}

func NewJobStepRepository(db DBTX) *JobStepRepository {
	return &JobStepRepository{db: db}
}

// Get returns a previously committed step, or pgx.ErrNoRows when the step
// has not completed yet.
func (r *JobStepRepository) Get(
	ctx context.Context,
	jobKey string,
	stepName string,
) (*models.JobStep, error) {
	query := `
		SELECT job_key, step_name, result, completed_at
		FROM job_steps
		WHERE job_key = $1 AND step_name = $2
	`
	var step models.JobStep
	err := r.db.QueryRow(ctx, query, jobKey, stepName).Scan(
		&step.JobKey,
		&step.StepName,
		&step.Result,
		&step.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *JobStepRepository) MarkCompleted(
	ctx context.Context,
	jobKey string,
	stepName string,
	result []byte,
) error {
	query := `
		INSERT INTO job_steps (job_key, step_name, result)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_key, step_name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, jobKey, stepName, result)
	return err
}
