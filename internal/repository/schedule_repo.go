package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pulsefit/reconciler/internal/models"
)

type MissedWorkoutRef struct {
	WorkoutID int64
	UserID    int64
}

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// MarkMissed transitions every scheduled workout dated exactly on the given
// day to missed and returns the affected workouts with their owning users.
func (r *ScheduleRepository) MarkMissed(
	ctx context.Context,
	day time.Time,
) ([]MissedWorkoutRef, error) {
	query := `
		UPDATE scheduled_workouts sw
		SET status = 'missed'
		FROM user_program_schedules ups
		WHERE sw.schedule_id = ups.id
		  AND sw.status = 'scheduled'
		  AND sw.scheduled_date = $1
		RETURNING sw.id, ups.user_id
	`
	rows, err := r.db.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]MissedWorkoutRef, 0)
	for rows.Next() {
		var ref MissedWorkoutRef
		if err := rows.Scan(&ref.WorkoutID, &ref.UserID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}

func (r *ScheduleRepository) GetScheduleByID(
	ctx context.Context,
	scheduleID int64,
) (*models.UserProgramSchedule, error) {
	query := `
		SELECT id, user_id, preferred_days, auto_reschedule, reschedule_window_days
		FROM user_program_schedules
		WHERE id = $1
	`
	var schedule models.UserProgramSchedule
	err := r.db.QueryRow(ctx, query, scheduleID).Scan(
		&schedule.ID,
		&schedule.UserID,
		&schedule.PreferredDays,
		&schedule.AutoReschedule,
		&schedule.RescheduleWindowDays,
	)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) ListSchedulesByUserID(
	ctx context.Context,
	userID int64,
) ([]models.UserProgramSchedule, error) {
	query := `
		SELECT id, user_id, preferred_days, auto_reschedule, reschedule_window_days
		FROM user_program_schedules
		WHERE user_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.UserProgramSchedule, 0)
	for rows.Next() {
		var schedule models.UserProgramSchedule
		if err := rows.Scan(
			&schedule.ID,
			&schedule.UserID,
			&schedule.PreferredDays,
			&schedule.AutoReschedule,
			&schedule.RescheduleWindowDays,
		); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

// ListMissedWorkouts returns a schedule's missed workouts in program order,
// optionally narrowed to an explicit id set.
func (r *ScheduleRepository) ListMissedWorkouts(
	ctx context.Context,
	scheduleID int64,
	workoutIDs []int64,
) ([]models.ScheduledWorkout, error) {
	args := []any{scheduleID}
	whereParts := []string{"schedule_id = $1", "status = 'missed'"}
	if len(workoutIDs) > 0 {
		args = append(args, workoutIDs)
		whereParts = append(whereParts, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, schedule_id, workout_name, program_week, program_day, status,
		       scheduled_date, rescheduled_from, rescheduled_count, rescheduled_reason, original_date
		FROM scheduled_workouts
		WHERE %s
		ORDER BY program_week ASC, program_day ASC, id ASC
	`, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]models.ScheduledWorkout, 0)
	for rows.Next() {
		var workout models.ScheduledWorkout
		if err := rows.Scan(
			&workout.ID,
			&workout.ScheduleID,
			&workout.WorkoutName,
			&workout.ProgramWeek,
			&workout.ProgramDay,
			&workout.Status,
			&workout.ScheduledDate,
			&workout.RescheduledFrom,
			&workout.RescheduledCount,
			&workout.RescheduledReason,
			&workout.OriginalDate,
		); err != nil {
			return nil, err
		}
		workouts = append(workouts, workout)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// ListOccupiedDates returns the dates of a schedule's entries that are still
// scheduled on or after the given day.
func (r *ScheduleRepository) ListOccupiedDates(
	ctx context.Context,
	scheduleID int64,
	from time.Time,
) ([]time.Time, error) {
	query := `
		SELECT scheduled_date
		FROM scheduled_workouts
		WHERE schedule_id = $1
		  AND status = 'scheduled'
		  AND scheduled_date >= $2
		ORDER BY scheduled_date ASC
	`
	rows, err := r.db.Query(ctx, query, scheduleID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

// Reschedule moves a missed workout to a new date. original_date keeps its
// first-ever value via COALESCE and is never overwritten afterwards.
func (r *ScheduleRepository) Reschedule(
	ctx context.Context,
	workoutID int64,
	newDate time.Time,
	oldDate time.Time,
	reason string,
) (*models.ScheduledWorkout, error) {
	query := `
		UPDATE scheduled_workouts
		SET scheduled_date = $2,
		    status = 'scheduled',
		    rescheduled_from = $3,
		    rescheduled_count = rescheduled_count + 1,
		    rescheduled_reason = $4,
		    original_date = COALESCE(original_date, $3)
		WHERE id = $1
		RETURNING id, schedule_id, workout_name, program_week, program_day, status,
		          scheduled_date, rescheduled_from, rescheduled_count, rescheduled_reason, original_date
	`
	var workout models.ScheduledWorkout
	err := r.db.QueryRow(ctx, query, workoutID, newDate, oldDate, reason).Scan(
		&workout.ID,
		&workout.ScheduleID,
		&workout.WorkoutName,
		&workout.ProgramWeek,
		&workout.ProgramDay,
		&workout.Status,
		&workout.ScheduledDate,
		&workout.RescheduledFrom,
		&workout.RescheduledCount,
		&workout.RescheduledReason,
		&workout.OriginalDate,
	)
	if err != nil {
		return nil, err
	}
	return &workout, nil
}
