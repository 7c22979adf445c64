package model

import "time"

// TimeSlot is the occupancy ledger for shared equipment: one document
// per (equipment, interval) with a live reservation count. Slots are
// created lazily on first booking and deleted when the count reaches
// zero, so 0 < CurrentCount <= MaxSimultaneous holds for every stored
// slot.
type TimeSlot struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	EquipmentID     string    `json:"equipment_id" bson:"equipment_id" validate:"required,mongodb"`
	StartTime       time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	CurrentCount    int       `json:"current_count" bson:"current_count" validate:"min=0"`
	MaxSimultaneous int       `json:"max_simultaneous" bson:"max_simultaneous" validate:"required,min=1"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Contains reports whether the requested interval fits entirely inside
// this slot. Partial overlap is never joinable.
func (s *TimeSlot) Contains(start, end time.Time) bool {
	return !s.StartTime.After(start) && !s.EndTime.Before(end)
}

func (s *TimeSlot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

func (s *TimeSlot) IsFull() bool {
	return s.CurrentCount >= s.MaxSimultaneous
}
