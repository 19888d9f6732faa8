package models

import "time"

type PersonalRecord struct {
	ID         int64     `json:"id"`
	ExerciseID int64     `json:"exercise_id"`
	MemberID   int64     `json:"member_id"`
	RepMax     int       `json:"rep_max"`
	Value      float64   `json:"value"`
	Date       time.Time `json:"date"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
