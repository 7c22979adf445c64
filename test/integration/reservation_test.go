package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"reservo/pkg/model"
	"reservo/test/integration/testutil"
)

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func createEquipment(t *testing.T, client *testutil.Client, equipment model.Equipment) model.Equipment {
	t.Helper()
	resp := client.POST(t, "/api/v1/equipment", equipment)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created dataEnvelope[model.Equipment]
	if err := resp.UnmarshalJSON(&created); err != nil {
		t.Fatalf("failed to unmarshal equipment: %v", err)
	}
	if created.Data.ID == "" {
		t.Fatal("expected equipment ID to be set")
	}
	return created.Data
}

func TestCreateReservation_Exclusive(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	reservation := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", reservation)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var envelope dataEnvelope[model.Reservation]
	if err := resp.UnmarshalJSON(&envelope); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	created := envelope.Data
	if created.ID == "" {
		t.Error("expected ID to be set")
	}
	if created.ReservationNumber == "" {
		t.Error("expected reservation number to be assigned")
	}
	if len(created.ReservationCode) != 8 {
		t.Errorf("expected 8-char code, got %q", created.ReservationCode)
	}
	if created.Status != model.StatusConfirmed {
		t.Errorf("expected confirmed status, got %q", created.Status)
	}

	count := mongo.CountDocuments(t, testutil.ReservationsCollection)
	if count != 1 {
		t.Errorf("expected 1 document in DB, got %d", count)
	}
}

func TestCreateReservation_ExclusiveConflict(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	first := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", first)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	// Overlaps the middle of the first reservation.
	second := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(first.StartTime.Add(30*time.Minute), first.EndTime.Add(30*time.Minute)).
		Build()
	resp = client.POST(t, "/api/v1/reservations", second)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)

	count := mongo.CountDocuments(t, testutil.ReservationsCollection)
	if count != 1 {
		t.Errorf("expected only the first reservation persisted, got %d", count)
	}
}

func TestCreateReservation_BoundaryTouchAllowed(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	first := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", first)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	// Starts exactly where the first ends.
	second := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(first.EndTime, first.EndTime.Add(time.Hour)).
		Build()
	resp = client.POST(t, "/api/v1/reservations", second)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestCreateReservation_SharedJoinsSlot(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.SharedEquipment(2))
	first := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", first)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	second := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(first.StartTime, first.EndTime).
		WithRequester("Second Requester").
		Build()
	resp = client.POST(t, "/api/v1/reservations", second)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	// Both reservations share one slot at capacity.
	if count := mongo.CountDocuments(t, testutil.TimeSlotsCollection); count != 1 {
		t.Errorf("expected 1 time slot, got %d", count)
	}

	third := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(first.StartTime, first.EndTime).
		WithRequester("Third Requester").
		Build()
	resp = client.POST(t, "/api/v1/reservations", third)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
}

func TestCancelReservation(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	reservation := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", reservation)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var envelope dataEnvelope[model.Reservation]
	if err := resp.UnmarshalJSON(&envelope); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	created := envelope.Data

	resp = client.POST(t, fmt.Sprintf("/api/v1/reservations/id/%s/cancel", created.ID), nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Cancelling again is rejected, not idempotent.
	resp = client.POST(t, fmt.Sprintf("/api/v1/reservations/id/%s/cancel", created.ID), nil)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	testutil.AssertContains(t, resp, "ALREADY_CANCELLED")

	// The interval is free again.
	again := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(created.StartTime, created.EndTime).
		Build()
	resp = client.POST(t, "/api/v1/reservations", again)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestGetReservation_ByNumberAndCode(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	reservation := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", reservation)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var envelope dataEnvelope[model.Reservation]
	if err := resp.UnmarshalJSON(&envelope); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	created := envelope.Data

	resp = client.GET(t, "/api/v1/reservations/number/"+created.ReservationNumber)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = client.GET(t, "/api/v1/reservations/code/"+created.ReservationCode)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = client.GET(t, "/api/v1/reservations/number/RN-19700101-0000")
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestCheckAvailability(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	reservation := testutil.NewReservationBuilder(equipment.ID).Build()

	resp := client.POST(t, "/api/v1/reservations", reservation)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	query := fmt.Sprintf("/api/v1/availability?equipment_id=%s&start_time=%s&end_time=%s",
		equipment.ID,
		reservation.StartTime.Format(time.RFC3339),
		reservation.EndTime.Format(time.RFC3339),
	)
	resp = client.GET(t, query)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"available":false`)
}
