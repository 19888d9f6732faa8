package repository

import "context"

// WorkoutRefRepository handles the plan and session rows that do nothing but
// point at an exercise; merges re-point them in bulk.
type WorkoutRefRepository struct {
	db DBTX
}

func NewWorkoutRefRepository(db DBTX) *WorkoutRefRepository {
	return &WorkoutRefRepository{db: db}
}

func (r *WorkoutRefRepository) RepointPlanExercises(
	ctx context.Context,
	fromExerciseID int64,
	toExerciseID int64,
) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_plan_exercises SET exercise_id = $2 WHERE exercise_id = $1`,
		fromExerciseID,
		toExerciseID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *WorkoutRefRepository) RepointSessionExercises(
	ctx context.Context,
	fromExerciseID int64,
	toExerciseID int64,
) (int64, error) {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_session_exercises SET exercise_id = $2 WHERE exercise_id = $1`,
		fromExerciseID,
		toExerciseID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
