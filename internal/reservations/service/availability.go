package service

import (
	"context"
	"errors"
	"fmt"
	reservationserrors "reservo/internal/reservations/errors"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
	"time"
)

// Availability is the outcome of a conflict check for one equipment
// and interval. Slot is the containing occupancy slot when shared
// equipment already has one; nil means the booking would open a new
// slot.
type Availability struct {
	Available       bool            `json:"available"`
	Reason          string          `json:"reason,omitempty"`
	CurrentCount    int             `json:"current_count,omitempty"`
	MaxSimultaneous int             `json:"max_simultaneous,omitempty"`
	Slot            *model.TimeSlot `json:"-"`
}

// checkAvailability runs the conflict rules without taking the
// equipment lock. Callers that intend to book must hold the lock and
// run this inside the booking transaction; the read-only endpoint
// calls it bare and accepts that the answer is advisory.
func (s *reservationService) checkAvailability(ctx context.Context, equipment *model.Equipment, startTime, endTime time.Time, excludeReservationID, excludeSlotID string) (*Availability, error) {
	if !equipment.Active {
		return &Availability{
			Available: false,
			Reason:    fmt.Sprintf("Equipment %q is out of service", equipment.Name),
		}, nil
	}
	if equipment.AllowSimultaneous {
		return s.checkSharedAvailability(ctx, equipment, startTime, endTime, excludeSlotID)
	}
	return s.checkExclusiveAvailability(ctx, equipment, startTime, endTime, excludeReservationID)
}

// Exclusive equipment: any active reservation overlapping the interval
// is a conflict. Touching boundaries do not overlap.
func (s *reservationService) checkExclusiveAvailability(ctx context.Context, equipment *model.Equipment, startTime, endTime time.Time, excludeReservationID string) (*Availability, error) {
	overlapping, err := s.repo.FindActiveOverlapping(ctx, equipment.ID, startTime, endTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to check overlapping reservations", err)
	}

	for _, existing := range overlapping {
		if excludeReservationID != "" && existing.ID == excludeReservationID {
			continue
		}
		return &Availability{
			Available:       false,
			Reason:          fmt.Sprintf("Overlaps reservation %s (%s - %s)", existing.ReservationNumber, existing.StartTime.Format(time.RFC3339), existing.EndTime.Format(time.RFC3339)),
			CurrentCount:    1,
			MaxSimultaneous: 1,
		}, nil
	}

	return &Availability{Available: true, MaxSimultaneous: 1}, nil
}

// Shared equipment books against the occupancy ledger. A request either
// lands entirely inside an existing slot or opens a fresh one; a
// partial overlap with any slot is rejected outright, slots are never
// split or merged.
func (s *reservationService) checkSharedAvailability(ctx context.Context, equipment *model.Equipment, startTime, endTime time.Time, excludeSlotID string) (*Availability, error) {
	capacity := equipment.Capacity()

	slot, err := s.slotRepo.FindContaining(ctx, equipment.ID, startTime, endTime)
	if err != nil && !errors.Is(err, reservationserrors.ErrSlotNotFound) {
		return nil, apperrors.Internal("Failed to look up containing time slot", err)
	}

	if slot != nil {
		occupied := slot.CurrentCount
		// A rebooked reservation still holds a seat in its current
		// slot; that seat must not count against it.
		if excludeSlotID != "" && slot.ID == excludeSlotID {
			occupied--
		}
		if occupied >= slot.MaxSimultaneous {
			return &Availability{
				Available:       false,
				Reason:          fmt.Sprintf("Time slot is at capacity (%d/%d)", slot.CurrentCount, slot.MaxSimultaneous),
				CurrentCount:    slot.CurrentCount,
				MaxSimultaneous: slot.MaxSimultaneous,
				Slot:            slot,
			}, nil
		}
		return &Availability{
			Available:       true,
			CurrentCount:    slot.CurrentCount,
			MaxSimultaneous: slot.MaxSimultaneous,
			Slot:            slot,
		}, nil
	}

	overlapping, err := s.slotRepo.FindOverlapping(ctx, equipment.ID, startTime, endTime)
	if err != nil {
		return nil, apperrors.Internal("Failed to look up overlapping time slots", err)
	}
	if len(overlapping) > 0 {
		clash := overlapping[0]
		return &Availability{
			Available:       false,
			Reason:          fmt.Sprintf("Partially overlaps occupied slot %s - %s", clash.StartTime.Format(time.RFC3339), clash.EndTime.Format(time.RFC3339)),
			CurrentCount:    clash.CurrentCount,
			MaxSimultaneous: clash.MaxSimultaneous,
		}, nil
	}

	return &Availability{Available: true, MaxSimultaneous: capacity}, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*Availability, error) {
	if equipmentID == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}
	if !endTime.After(startTime) {
		return nil, apperrors.InvalidInterval("end_time must be after start_time")
	}

	equipment, err := s.getEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	return s.checkAvailability(ctx, equipment, startTime, endTime, "", "")
}
