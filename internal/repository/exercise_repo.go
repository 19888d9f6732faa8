package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pulsefit/reconciler/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ExerciseRepository struct {
	db DBTX
}

func NewExerciseRepository(db DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) GetByID(ctx context.Context, id int64) (*models.Exercise, error) {
	query := `
		SELECT id, name, is_custom, image_url, description, synonyms, created_at, updated_at
		FROM exercises
		WHERE id = $1
	`
	var exercise models.Exercise
	err := r.db.QueryRow(ctx, query, id).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.IsCustom,
		&exercise.ImageURL,
		&exercise.Description,
		&exercise.Synonyms,
		&exercise.CreatedAt,
		&exercise.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

// ListOrphans returns custom entries that carry neither an image nor a
// description, ordered oldest first so repeated runs process a stable prefix.
func (r *ExerciseRepository) ListOrphans(ctx context.Context) ([]models.Exercise, error) {
	query := `
		SELECT id, name, is_custom, image_url, description, synonyms, created_at, updated_at
		FROM exercises
		WHERE is_custom AND image_url IS NULL AND description IS NULL
		ORDER BY created_at ASC, id ASC
	`
	return r.list(ctx, query)
}

// ListRichLibrary returns curated entries with an image, the only entries
// eligible as merge targets.
func (r *ExerciseRepository) ListRichLibrary(ctx context.Context) ([]models.Exercise, error) {
	query := `
		SELECT id, name, is_custom, image_url, description, synonyms, created_at, updated_at
		FROM exercises
		WHERE NOT is_custom AND image_url IS NOT NULL
		ORDER BY id ASC
	`
	return r.list(ctx, query)
}

func (r *ExerciseRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	return err
}

func (r *ExerciseRepository) list(ctx context.Context, query string, args ...any) ([]models.Exercise, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]models.Exercise, 0)
	for rows.Next() {
		var exercise models.Exercise
		if err := rows.Scan(
			&exercise.ID,
			&exercise.Name,
			&exercise.IsCustom,
			&exercise.ImageURL,
			&exercise.Description,
			&exercise.Synonyms,
			&exercise.CreatedAt,
			&exercise.UpdatedAt,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}
