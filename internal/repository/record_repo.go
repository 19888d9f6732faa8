package repository

import (
	"context"
	"time"

	"github.com/pulsefit/reconciler/internal/models"
)

type PersonalRecordRepository struct {
	db DBTX
}

func NewPersonalRecordRepository(db DBTX) *PersonalRecordRepository {
	return &PersonalRecordRepository{db: db}
}

func (r *PersonalRecordRepository) ListByExerciseID(
	ctx context.Context,
	exerciseID int64,
) ([]models.PersonalRecord, error) {
	query := `
		SELECT id, exercise_id, member_id, rep_max, value, date, notes, created_at
		FROM personal_records
		WHERE exercise_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, exerciseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.PersonalRecord, 0)
	for rows.Next() {
		var record models.PersonalRecord
		if err := rows.Scan(
			&record.ID,
			&record.ExerciseID,
			&record.MemberID,
			&record.RepMax,
			&record.Value,
			&record.Date,
			&record.Notes,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// GetByExerciseMemberRepMax returns the record a member holds on an exercise
// for a given rep max, or pgx.ErrNoRows when none exists.
func (r *PersonalRecordRepository) GetByExerciseMemberRepMax(
	ctx context.Context,
	exerciseID int64,
	memberID int64,
	repMax int,
) (*models.PersonalRecord, error) {
	query := `
		SELECT id, exercise_id, member_id, rep_max, value, date, notes, created_at
		FROM personal_records
		WHERE exercise_id = $1 AND member_id = $2 AND rep_max = $3
	`
	var record models.PersonalRecord
	err := r.db.QueryRow(ctx, query, exerciseID, memberID, repMax).Scan(
		&record.ID,
		&record.ExerciseID,
		&record.MemberID,
		&record.RepMax,
		&record.Value,
		&record.Date,
		&record.Notes,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PersonalRecordRepository) UpdateExerciseID(
	ctx context.Context,
	recordID int64,
	exerciseID int64,
) error {
	_, err := r.db.Exec(
		ctx,
		`UPDATE personal_records SET exercise_id = $2 WHERE id = $1`,
		recordID,
		exerciseID,
	)
	return err
}

// UpdateBest overwrites a record's value, date, and notes with the winning
// side of a merge collision.
func (r *PersonalRecordRepository) UpdateBest(
	ctx context.Context,
	recordID int64,
	value float64,
	date time.Time,
	notes *string,
) error {
	_, err := r.db.Exec(
		ctx,
		`UPDATE personal_records SET value = $2, date = $3, notes = $4 WHERE id = $1`,
		recordID,
		value,
		date,
		notes,
	)
	return err
}

func (r *PersonalRecordRepository) Delete(ctx context.Context, recordID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM personal_records WHERE id = $1`, recordID)
	return err
}
