package jobs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/pulsefit/reconciler/internal/models"
)

type stepStore interface {
	Get(ctx context.Context, jobKey, stepName string) (*models.JobStep, error)
	MarkCompleted(ctx context.Context, jobKey, stepName string, result []byte) error
}

// StepRunner memoizes job steps in the store so that a retried job does not
// re-execute side effects it already committed. A completed step's recorded
// result is returned as-is on later attempts.
type StepRunner struct {
	store stepStore
}

func NewStepRunner(store stepStore) *StepRunner {
	return &StepRunner{store: store}
}

func (r *StepRunner) Run(
	ctx context.Context,
	jobKey string,
	stepName string,
	fn func(ctx context.Context) ([]byte, error),
) ([]byte, error) {
	existing, err := r.store.Get(ctx, jobKey, stepName)
	if err == nil {
		return existing.Result, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.store.MarkCompleted(ctx, jobKey, stepName, result); err != nil {
		return nil, err
	}
	return result, nil
}
