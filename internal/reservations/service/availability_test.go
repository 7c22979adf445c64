package service

import (
	"context"
	"testing"
	"time"

	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
)

func TestCheckAvailability_InvalidInterval(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckAvailability(context.Background(), testEquipmentID, testStart, testStart)
	assertCode(t, err, apperrors.CodeInvalidInterval)
}

func TestCheckAvailability_ExclusiveFree(t *testing.T) {
	f := newFixture(t)

	decision, err := f.svc.CheckAvailability(context.Background(), testEquipmentID, testStart, testStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected availability answer, got: %v", err)
	}
	if !decision.Available {
		t.Errorf("expected available, got reason %q", decision.Reason)
	}
	if decision.MaxSimultaneous != 1 {
		t.Errorf("exclusive equipment reports capacity 1, got %d", decision.MaxSimultaneous)
	}
}

func TestCheckAvailability_ExclusiveBusy(t *testing.T) {
	f := newFixture(t)
	f.repo.findActiveOverlappingFunc = func(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{{
			ReservationNumber: "RN-20260310-0009",
			StartTime:         testStart,
			EndTime:           testStart.Add(2 * time.Hour),
		}}, nil
	}

	decision, err := f.svc.CheckAvailability(context.Background(), testEquipmentID, testStart, testStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected availability answer, got: %v", err)
	}
	if decision.Available {
		t.Error("expected unavailable when an active reservation overlaps")
	}
	if decision.Reason == "" {
		t.Error("expected a human-readable reason")
	}
}

func TestCheckAvailability_SharedReportsOccupancy(t *testing.T) {
	f := newFixture(t)
	f.sharedEquipment(5)
	f.slotRepo.findContainingFunc = func(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error) {
		return &model.TimeSlot{
			ID:              testSlotID,
			CurrentCount:    2,
			MaxSimultaneous: 5,
			StartTime:       testStart,
			EndTime:         testStart.Add(2 * time.Hour),
		}, nil
	}

	decision, err := f.svc.CheckAvailability(context.Background(), testEquipmentID, testStart, testStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected availability answer, got: %v", err)
	}
	if !decision.Available {
		t.Errorf("expected available at 2/5 occupancy, got reason %q", decision.Reason)
	}
	if decision.CurrentCount != 2 || decision.MaxSimultaneous != 5 {
		t.Errorf("expected occupancy 2/5, got %d/%d", decision.CurrentCount, decision.MaxSimultaneous)
	}
}

func TestCheckAvailability_UnknownEquipment(t *testing.T) {
	f := newFixture(t)
	f.equipmentRepo.findByIDFunc = nil

	_, err := f.svc.CheckAvailability(context.Background(), testEquipmentID, testStart, testStart.Add(time.Hour))
	assertCode(t, err, apperrors.CodeNotFound)
}
