package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrEquipmentNotFound = errors.New("equipment not found")

	ErrSlotNotFound = errors.New("time slot not found")

	// ErrSlotFull is returned by the conditioned increment when the slot
	// reached capacity between the availability check and the write.
	ErrSlotFull = errors.New("time slot is at capacity")

	ErrLockHeld = errors.New("equipment lock is held by another request")
)
