package model

import "time"

// AuditEntry records one field change on a reservation. Updates write
// one entry per changed field so the trail reads as a diff.
type AuditEntry struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id" validate:"required,mongodb"`
	Field         string    `json:"field" bson:"field" validate:"required"`
	OldValue      string    `json:"old_value" bson:"old_value"`
	NewValue      string    `json:"new_value" bson:"new_value"`
	Actor         string    `json:"actor,omitempty" bson:"actor,omitempty" validate:"omitempty,max=100"`
	ChangedAt     time.Time `json:"changed_at" bson:"changed_at"`
}
