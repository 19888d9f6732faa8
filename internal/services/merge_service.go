package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pulsefit/reconciler/internal/repository"
)

var ErrSameExercise = errors.New("cannot merge an exercise into itself")

// MergeService folds a losing exercise into a winning one: personal records
// are re-pointed or collision-resolved, plan and session references are
// re-pointed in bulk, and the loser is deleted. Everything happens inside a
// single transaction, so a failure at any step leaves the store untouched.
type MergeService struct {
	db *pgxpool.Pool
}

func NewMergeService(db *pgxpool.Pool) *MergeService {
	return &MergeService{db: db}
}

func (s *MergeService) Merge(ctx context.Context, loserID, winnerID int64) error {
	if loserID == winnerID {
		return ErrSameExercise
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRecordRepo := repository.NewPersonalRecordRepository(tx)
	txRefRepo := repository.NewWorkoutRefRepository(tx)
	txExerciseRepo := repository.NewExerciseRepository(tx)

	records, err := txRecordRepo.ListByExerciseID(ctx, loserID)
	if err != nil {
		return fmt.Errorf("list loser records: %w", err)
	}

	for _, record := range records {
		existing, err := txRecordRepo.GetByExerciseMemberRepMax(
			ctx,
			winnerID,
			record.MemberID,
			record.RepMax,
		)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("look up winner record: %w", err)
			}
			// No collision: the loser's record simply moves over.
			if err := txRecordRepo.UpdateExerciseID(ctx, record.ID, winnerID); err != nil {
				return fmt.Errorf("re-point record %d: %w", record.ID, err)
			}
			continue
		}

		// Collision: the winner keeps the higher value, the loser's record
		// never survives.
		if record.Value > existing.Value {
			if err := txRecordRepo.UpdateBest(ctx, existing.ID, record.Value, record.Date, record.Notes); err != nil {
				return fmt.Errorf("update winner record %d: %w", existing.ID, err)
			}
		}
		if err := txRecordRepo.Delete(ctx, record.ID); err != nil {
			return fmt.Errorf("delete loser record %d: %w", record.ID, err)
		}
	}

	if _, err := txRefRepo.RepointPlanExercises(ctx, loserID, winnerID); err != nil {
		return fmt.Errorf("re-point plan exercises: %w", err)
	}
	if _, err := txRefRepo.RepointSessionExercises(ctx, loserID, winnerID); err != nil {
		return fmt.Errorf("re-point session exercises: %w", err)
	}

	if err := txExerciseRepo.Delete(ctx, loserID); err != nil {
		return fmt.Errorf("delete loser exercise: %w", err)
	}

	return tx.Commit(ctx)
}
