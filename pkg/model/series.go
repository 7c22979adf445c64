package model

import "time"

const (
	PatternDaily   = "daily"
	PatternWeekly  = "weekly"
	PatternMonthly = "monthly"

	SeriesStatusActive    = "active"
	SeriesStatusCancelled = "cancelled"
)

// RecurringSeries describes a recurrence template plus the bookkeeping
// of its last expansion. Planned counts every date the pattern matched,
// Created the ones that booked, Skipped the ones rejected by conflicts;
// Created + Skipped == Planned after every expansion.
type RecurringSeries struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ReservationCode  string    `json:"reservation_code" bson:"reservation_code" validate:"omitempty,len=8,reservation_code"`
	EquipmentID      string    `json:"equipment_id" bson:"equipment_id" validate:"required,mongodb"`
	Pattern          string    `json:"pattern" bson:"pattern" validate:"required,oneof=daily weekly monthly"`
	Weekdays         []int     `json:"weekdays,omitempty" bson:"weekdays,omitempty" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
	DaysOfMonth      []int     `json:"days_of_month,omitempty" bson:"days_of_month,omitempty" validate:"omitempty,min=1,max=31,dive,min=1,max=31"`
	StartDate        time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate          time.Time `json:"end_date" bson:"end_date" validate:"required,gtefield=StartDate"`
	StartTimeOfDay   string    `json:"start_time_of_day" bson:"start_time_of_day" validate:"required,time_of_day"`
	EndTimeOfDay     string    `json:"end_time_of_day" bson:"end_time_of_day" validate:"required,time_of_day"`
	Status           string    `json:"status" bson:"status" validate:"omitempty,oneof=active cancelled"`
	RequesterName    string    `json:"requester_name" bson:"requester_name" validate:"required,min=2,max=100"`
	RequesterContact string    `json:"requester_contact,omitempty" bson:"requester_contact,omitempty" validate:"omitempty,max=200"`
	Purpose          string    `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"omitempty,max=500"`
	PlannedCount     int       `json:"planned_count" bson:"planned_count"`
	CreatedCount     int       `json:"created_count" bson:"created_count"`
	SkippedCount     int       `json:"skipped_count" bson:"skipped_count"`
	SkippedDates     []string  `json:"skipped_dates,omitempty" bson:"skipped_dates,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type RecurringSeriesUpdate struct {
	Pattern          string     `json:"pattern,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Weekdays         *[]int     `json:"weekdays,omitempty" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
	DaysOfMonth      *[]int     `json:"days_of_month,omitempty" validate:"omitempty,min=1,max=31,dive,min=1,max=31"`
	StartDate        *time.Time `json:"start_date,omitempty" validate:"omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty" validate:"omitempty"`
	StartTimeOfDay   string     `json:"start_time_of_day,omitempty" validate:"omitempty,time_of_day"`
	EndTimeOfDay     string     `json:"end_time_of_day,omitempty" validate:"omitempty,time_of_day"`
	RequesterName    string     `json:"requester_name,omitempty" validate:"omitempty,min=2,max=100"`
	RequesterContact string     `json:"requester_contact,omitempty" validate:"omitempty,max=200"`
	Purpose          string     `json:"purpose,omitempty" validate:"omitempty,max=500"`
}

// ExpansionResult summarizes one expansion pass over a series.
type ExpansionResult struct {
	Planned      int      `json:"planned"`
	Created      int      `json:"created"`
	Skipped      int      `json:"skipped"`
	SkippedDates []string `json:"skipped_dates,omitempty"`
}
