package testutil

import (
	"reservo/pkg/model"
	"time"
)

type ReservationBuilder struct {
	r model.Reservation
}

func NewReservationBuilder(equipmentID string) *ReservationBuilder {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	return &ReservationBuilder{
		r: model.Reservation{
			EquipmentID:      equipmentID,
			StartTime:        start,
			EndTime:          start.Add(2 * time.Hour),
			RequesterName:    "Test Requester",
			RequesterContact: "+12025550123",
			Purpose:          "Integration test booking",
		},
	}
}

func (b *ReservationBuilder) WithInterval(start, end time.Time) *ReservationBuilder {
	b.r.StartTime = start
	b.r.EndTime = end
	return b
}

func (b *ReservationBuilder) WithRequester(name string) *ReservationBuilder {
	b.r.RequesterName = name
	return b
}

func (b *ReservationBuilder) WithPurpose(purpose string) *ReservationBuilder {
	b.r.Purpose = purpose
	return b
}

func (b *ReservationBuilder) Build() model.Reservation {
	return b.r
}

func ValidEquipment() model.Equipment {
	return model.Equipment{
		Name:     "Test Laser Cutter",
		Category: "fabrication",
		Location: "Workshop A",
		Active:   true,
	}
}

func SharedEquipment(maxSimultaneous int) model.Equipment {
	return model.Equipment{
		Name:              "Test GPU Cluster",
		Category:          "compute",
		AllowSimultaneous: true,
		MaxSimultaneous:   maxSimultaneous,
		Active:            true,
	}
}

func ValidSeries(equipmentID string) model.RecurringSeries {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(24 * time.Hour)
	return model.RecurringSeries{
		EquipmentID:    equipmentID,
		Pattern:        model.PatternDaily,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 4),
		StartTimeOfDay: "09:00",
		EndTimeOfDay:   "10:00",
		RequesterName:  "Test Requester",
		Purpose:        "Recurring integration booking",
	}
}
