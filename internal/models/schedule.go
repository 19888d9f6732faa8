package models

import "time"

const (
	WorkoutStatusScheduled = "scheduled"
	WorkoutStatusMissed    = "missed"
	WorkoutStatusCompleted = "completed"
)

type ScheduledWorkout struct {
	ID                int64      `json:"id"`
	ScheduleID        int64      `json:"schedule_id"`
	WorkoutName       string     `json:"workout_name"`
	ProgramWeek       int        `json:"program_week"`
	ProgramDay        int        `json:"program_day"`
	Status            string     `json:"status"`
	ScheduledDate     time.Time  `json:"scheduled_date"`
	RescheduledFrom   *time.Time `json:"rescheduled_from,omitempty"`
	RescheduledCount  int        `json:"rescheduled_count"`
	RescheduledReason *string    `json:"rescheduled_reason,omitempty"`
	OriginalDate      *time.Time `json:"original_date,omitempty"`
}

type UserProgramSchedule struct {
	ID                   int64 `json:"id"`
	UserID               int64 `json:"user_id"`
	PreferredDays        []int `json:"preferred_days"`
	AutoReschedule       bool  `json:"auto_reschedule"`
	RescheduleWindowDays int   `json:"reschedule_window_days"`
}
