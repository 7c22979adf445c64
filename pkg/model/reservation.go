package model

import (
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusInUse     = "in_use"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

type Reservation struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ReservationNumber string    `json:"reservation_number" bson:"reservation_number" validate:"omitempty"`
	ReservationCode   string    `json:"reservation_code" bson:"reservation_code" validate:"omitempty,len=8,reservation_code"`
	EquipmentID       string    `json:"equipment_id" bson:"equipment_id" validate:"required,mongodb"`
	TimeSlotID        string    `json:"time_slot_id,omitempty" bson:"time_slot_id,omitempty" validate:"omitempty,mongodb"`
	SeriesID          string    `json:"series_id,omitempty" bson:"series_id,omitempty" validate:"omitempty,mongodb"`
	IsException       bool      `json:"is_exception" bson:"is_exception"`
	StartTime         time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime           time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status            string    `json:"status" bson:"status" validate:"omitempty,oneof=confirmed in_use expired cancelled"`
	RequesterName     string    `json:"requester_name" bson:"requester_name" validate:"required,min=2,max=100"`
	RequesterContact  string    `json:"requester_contact,omitempty" bson:"requester_contact,omitempty" validate:"omitempty,max=200"`
	Purpose           string    `json:"purpose,omitempty" bson:"purpose,omitempty" validate:"omitempty,max=500"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type ReservationUpdate struct {
	StartTime        *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	RequesterName    string     `json:"requester_name,omitempty" validate:"omitempty,min=2,max=100"`
	RequesterContact string     `json:"requester_contact,omitempty" validate:"omitempty,max=200"`
	Purpose          string     `json:"purpose,omitempty" validate:"omitempty,max=500"`
}

// IsTerminal reports whether the reservation can no longer change state.
// Only cancellation is terminal; expired reservations stay queryable and
// a backfilled expired record is still a valid historical entry.
func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusCancelled
}

// Overlaps uses half-open interval semantics: a reservation ending at
// 10:00 does not overlap one starting at 10:00.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}
