package model

import "time"

// EquipmentLock is an advisory lock serializing availability checks and
// booking writes per equipment. Liveness comes from ExpiresAt: a holder
// that dies leaves a lock another process may steal once it is stale.
type EquipmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
