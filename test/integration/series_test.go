package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"reservo/pkg/model"
	"reservo/test/integration/testutil"
)

type seriesCreateResponse struct {
	Data struct {
		Series    model.RecurringSeries `json:"series"`
		Expansion model.ExpansionResult `json:"expansion"`
	} `json:"data"`
}

func TestCreateSeries_DailyExpansion(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	series := testutil.ValidSeries(equipment.ID)

	resp := client.POST(t, "/api/v1/series", series)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created seriesCreateResponse
	if err := resp.UnmarshalJSON(&created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if created.Data.Expansion.Planned != 5 {
		t.Errorf("expected 5 planned occurrences, got %d", created.Data.Expansion.Planned)
	}
	if created.Data.Expansion.Created != 5 {
		t.Errorf("expected 5 created children, got %d", created.Data.Expansion.Created)
	}
	if len(created.Data.Series.ReservationCode) != 8 {
		t.Errorf("expected 8-char series code, got %q", created.Data.Series.ReservationCode)
	}

	if count := mongo.CountDocuments(t, testutil.ReservationsCollection); count != 5 {
		t.Errorf("expected 5 children in DB, got %d", count)
	}
}

func TestCreateSeries_SkipsConflictingDates(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	series := testutil.ValidSeries(equipment.ID)

	// Book the second occurrence's window directly.
	blockStart := series.StartDate.AddDate(0, 0, 1).Add(9 * time.Hour)
	blocker := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(blockStart, blockStart.Add(time.Hour)).
		Build()
	resp := client.POST(t, "/api/v1/reservations", blocker)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = client.POST(t, "/api/v1/series", series)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created seriesCreateResponse
	if err := resp.UnmarshalJSON(&created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if created.Data.Expansion.Planned != 5 || created.Data.Expansion.Created != 4 || created.Data.Expansion.Skipped != 1 {
		t.Errorf("expected 5/4/1, got %d/%d/%d",
			created.Data.Expansion.Planned, created.Data.Expansion.Created, created.Data.Expansion.Skipped)
	}
	if len(created.Data.Expansion.SkippedDates) != 1 {
		t.Errorf("expected one skipped date, got %v", created.Data.Expansion.SkippedDates)
	}
}

func TestCancelSeries_ReleasesChildren(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	series := testutil.ValidSeries(equipment.ID)

	resp := client.POST(t, "/api/v1/series", series)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created seriesCreateResponse
	if err := resp.UnmarshalJSON(&created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	resp = client.POST(t, fmt.Sprintf("/api/v1/series/id/%s/cancel", created.Data.Series.ID), nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertContains(t, resp, `"cancelled_children":5`)

	// A cancelled series frees its windows.
	single := testutil.NewReservationBuilder(equipment.ID).
		WithInterval(series.StartDate.Add(9*time.Hour), series.StartDate.Add(10*time.Hour)).
		Build()
	resp = client.POST(t, "/api/v1/reservations", single)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = client.POST(t, fmt.Sprintf("/api/v1/series/id/%s/cancel", created.Data.Series.ID), nil)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
}

func TestGetSeriesChildren(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	equipment := createEquipment(t, client, testutil.ValidEquipment())
	series := testutil.ValidSeries(equipment.ID)

	resp := client.POST(t, "/api/v1/series", series)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var created seriesCreateResponse
	if err := resp.UnmarshalJSON(&created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	resp = client.GET(t, fmt.Sprintf("/api/v1/series/id/%s/children?limit=10&offset=0", created.Data.Series.ID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var page struct {
		Data       []model.Reservation `json:"data"`
		TotalCount int64               `json:"total_count"`
	}
	if err := resp.UnmarshalJSON(&page); err != nil {
		t.Fatalf("failed to unmarshal page: %v", err)
	}
	if page.TotalCount != 5 || len(page.Data) != 5 {
		t.Errorf("expected 5 children, got total=%d page=%d", page.TotalCount, len(page.Data))
	}
	for _, child := range page.Data {
		if child.ReservationCode != created.Data.Series.ReservationCode {
			t.Errorf("child %s does not carry the series code", child.ReservationNumber)
		}
	}
}
