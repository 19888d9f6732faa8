package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulsefit/reconciler/internal/models"
	"github.com/pulsefit/reconciler/internal/repository"
)

const rescheduleReason = "Automatically rescheduled after missed workout"

type scheduleStore interface {
	MarkMissed(ctx context.Context, day time.Time) ([]repository.MissedWorkoutRef, error)
	GetScheduleByID(ctx context.Context, scheduleID int64) (*models.UserProgramSchedule, error)
	ListSchedulesByUserID(ctx context.Context, userID int64) ([]models.UserProgramSchedule, error)
	ListMissedWorkouts(ctx context.Context, scheduleID int64, workoutIDs []int64) ([]models.ScheduledWorkout, error)
	ListOccupiedDates(ctx context.Context, scheduleID int64, from time.Time) ([]time.Time, error)
	Reschedule(ctx context.Context, workoutID int64, newDate, oldDate time.Time, reason string) (*models.ScheduledWorkout, error)
}

type SweepSummary struct {
	MissedCount   int     `json:"missed_count"`
	UsersNotified int     `json:"users_notified"`
	WorkoutIDs    []int64 `json:"workout_ids"`
	UserIDs       []int64 `json:"user_ids"`
}

type RescheduleInput struct {
	UserID     int64
	ScheduleID *int64
	WorkoutIDs []int64
	Strategy   string
}

type RescheduledWorkout struct {
	WorkoutID   int64     `json:"workout_id"`
	WorkoutName string    `json:"workout_name"`
	OldDate     time.Time `json:"old_date"`
	NewDate     time.Time `json:"new_date"`
}

type RescheduleService struct {
	scheduleRepo scheduleStore
	logger       *slog.Logger
	now          func() time.Time
}

func NewRescheduleService(scheduleRepo scheduleStore, logger *slog.Logger) *RescheduleService {
	return &RescheduleService{
		scheduleRepo: scheduleRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// SweepMissed marks every workout still scheduled for yesterday (UTC) as
// missed and returns the affected workouts plus the distinct owning users.
// Each distinct user gets exactly one reschedule request from this sweep.
func (s *RescheduleService) SweepMissed(ctx context.Context) (*SweepSummary, error) {
	yesterday := truncateToDay(s.now().UTC()).AddDate(0, 0, -1)

	refs, err := s.scheduleRepo.MarkMissed(ctx, yesterday)
	if err != nil {
		return nil, err
	}

	summary := &SweepSummary{
		MissedCount: len(refs),
		WorkoutIDs:  make([]int64, 0, len(refs)),
		UserIDs:     make([]int64, 0),
	}
	seen := make(map[int64]bool)
	for _, ref := range refs {
		summary.WorkoutIDs = append(summary.WorkoutIDs, ref.WorkoutID)
		if !seen[ref.UserID] {
			seen[ref.UserID] = true
			summary.UserIDs = append(summary.UserIDs, ref.UserID)
		}
	}
	summary.UsersNotified = len(summary.UserIDs)

	return summary, nil
}

// RescheduleMissed places a user's missed workouts on future dates. Workouts
// that cannot be placed inside the schedule's window stay missed and are
// excluded from the result.
func (s *RescheduleService) RescheduleMissed(
	ctx context.Context,
	input RescheduleInput,
) ([]RescheduledWorkout, error) {
	schedules, err := s.targetSchedules(ctx, input)
	if err != nil {
		return nil, err
	}

	rescheduled := make([]RescheduledWorkout, 0)
	for _, schedule := range schedules {
		if !schedule.AutoReschedule {
			s.logger.Info("auto-reschedule disabled, skipping",
				"schedule_id", schedule.ID,
				"user_id", schedule.UserID,
			)
			continue
		}

		placed, err := s.rescheduleForSchedule(ctx, schedule, input.WorkoutIDs)
		if err != nil {
			return nil, err
		}
		rescheduled = append(rescheduled, placed...)
	}

	return rescheduled, nil
}

func (s *RescheduleService) targetSchedules(
	ctx context.Context,
	input RescheduleInput,
) ([]models.UserProgramSchedule, error) {
	if input.ScheduleID != nil {
		schedule, err := s.scheduleRepo.GetScheduleByID(ctx, *input.ScheduleID)
		if err != nil {
			return nil, err
		}
		return []models.UserProgramSchedule{*schedule}, nil
	}
	return s.scheduleRepo.ListSchedulesByUserID(ctx, input.UserID)
}

func (s *RescheduleService) rescheduleForSchedule(
	ctx context.Context,
	schedule models.UserProgramSchedule,
	workoutIDs []int64,
) ([]RescheduledWorkout, error) {
	missed, err := s.scheduleRepo.ListMissedWorkouts(ctx, schedule.ID, workoutIDs)
	if err != nil {
		return nil, err
	}
	if len(missed) == 0 {
		return nil, nil
	}

	today := truncateToDay(s.now().UTC())
	occupiedDates, err := s.scheduleRepo.ListOccupiedDates(ctx, schedule.ID, today)
	if err != nil {
		return nil, err
	}
	occupied := make(map[time.Time]bool, len(occupiedDates))
	for _, date := range occupiedDates {
		occupied[truncateToDay(date)] = true
	}

	windowDays := schedule.RescheduleWindowDays * 7

	// The cursor advances to each assigned date so workouts placed in the
	// same run land on strictly increasing dates.
	cursor := today
	placed := make([]RescheduledWorkout, 0, len(missed))
	for _, workout := range missed {
		newDate, ok := findNextAvailableDate(cursor, schedule.PreferredDays, occupied, windowDays)
		if !ok {
			s.logger.Info("no available date in window, workout stays missed",
				"workout_id", workout.ID,
				"schedule_id", schedule.ID,
			)
			continue
		}

		oldDate := truncateToDay(workout.ScheduledDate)
		updated, err := s.scheduleRepo.Reschedule(ctx, workout.ID, newDate, oldDate, rescheduleReason)
		if err != nil {
			return nil, err
		}

		occupied[newDate] = true
		cursor = newDate
		placed = append(placed, RescheduledWorkout{
			WorkoutID:   updated.ID,
			WorkoutName: updated.WorkoutName,
			OldDate:     oldDate,
			NewDate:     newDate,
		})
	}

	return placed, nil
}

// findNextAvailableDate scans forward day by day, starting the day after
// start, for the first date whose weekday is preferred and which is not
// occupied. It reports false once the look-ahead window is exhausted.
func findNextAvailableDate(
	start time.Time,
	preferredDays []int,
	occupied map[time.Time]bool,
	windowDays int,
) (time.Time, bool) {
	preferred := make(map[time.Weekday]bool, len(preferredDays))
	for _, day := range preferredDays {
		preferred[time.Weekday(day)] = true
	}
	if len(preferred) == 0 {
		return time.Time{}, false
	}

	day := truncateToDay(start)
	for i := 0; i < windowDays; i++ {
		day = day.AddDate(0, 0, 1)
		if preferred[day.Weekday()] && !occupied[day] {
			return day, true
		}
	}
	return time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
