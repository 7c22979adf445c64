package validator

import (
	"reservo/pkg/logger"
	"reservo/pkg/model"
	"testing"
	"time"
)

func newTestValidator() *ReservationValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	return NewReservationValidator(log)
}

func validReservation() *model.Reservation {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &model.Reservation{
		EquipmentID:   "507f1f77bcf86cd799439011",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		Status:        model.StatusConfirmed,
		RequesterName: "Dana Cohen",
	}
}

func TestValidate_ValidReservation(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validReservation()); err != nil {
		t.Errorf("expected valid reservation, got error: %v", err)
	}
}

func TestValidate_MissingEquipmentID(t *testing.T) {
	v := newTestValidator()
	r := validReservation()
	r.EquipmentID = ""

	if err := v.Validate(r); err == nil {
		t.Error("expected validation error for missing equipment_id")
	}
}

func TestValidate_EndBeforeStart(t *testing.T) {
	v := newTestValidator()
	r := validReservation()
	r.EndTime = r.StartTime.Add(-time.Hour)

	if err := v.Validate(r); err == nil {
		t.Error("expected validation error when end_time precedes start_time")
	}
}

func TestValidate_EndEqualsStart(t *testing.T) {
	v := newTestValidator()
	r := validReservation()
	r.EndTime = r.StartTime

	if err := v.Validate(r); err == nil {
		t.Error("expected validation error for zero-length interval")
	}
}

func TestValidate_BadStatus(t *testing.T) {
	v := newTestValidator()
	r := validReservation()
	r.Status = "pending"

	if err := v.Validate(r); err == nil {
		t.Error("expected validation error for unknown status")
	}
}

func TestValidate_BadReservationCode(t *testing.T) {
	v := newTestValidator()
	r := validReservation()
	r.ReservationCode = "abc12345"

	if err := v.Validate(r); err == nil {
		t.Error("expected validation error for lowercase reservation code")
	}
}

func TestValidate_GoodReservationCode(t *testing.T) {
	v := newTestValidator()
	r := validReservation()
	r.ReservationCode = "A1B2C3D4"

	if err := v.Validate(r); err != nil {
		t.Errorf("expected valid reservation code, got error: %v", err)
	}
}

func TestValidateUpdate_EndBeforeStart(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	update := &model.ReservationUpdate{
		StartTime: &start,
		EndTime:   &end,
	}

	if err := v.ValidateUpdate(update); err == nil {
		t.Error("expected validation error when update end_time precedes start_time")
	}
}

func TestValidateUpdate_PartialUpdate(t *testing.T) {
	v := newTestValidator()
	update := &model.ReservationUpdate{
		Purpose: "Quarterly calibration",
	}

	if err := v.ValidateUpdate(update); err != nil {
		t.Errorf("expected valid partial update, got error: %v", err)
	}
}
