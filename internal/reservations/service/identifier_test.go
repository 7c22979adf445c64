package service

import (
	"context"
	"regexp"
	reservationserrors "reservo/internal/reservations/errors"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/logger"
	"reservo/pkg/model"
	"strings"
	"sync"
	"testing"
	"time"
)

var numberPattern = regexp.MustCompile(`^RN-20260310-\d{4}$`)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func newIdentifierFixture(repo *mockReservationRepo, lookup *mockSeriesLookup) *IdentifierGenerator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{Log: log, IdentifierMaxAttempts: 10}
	clk := clock.NewFixed(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	return NewIdentifierGenerator(repo, lookup, cfg, clk)
}

func TestNextReservationNumber_Format(t *testing.T) {
	g := newIdentifierFixture(&mockReservationRepo{}, &mockSeriesLookup{})

	number, err := g.NextReservationNumber(context.Background(), time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected a reservation number, got error: %v", err)
	}
	if !numberPattern.MatchString(number) {
		t.Errorf("expected RN-20260310-NNNN, got %q", number)
	}
}

func TestNextReservationNumber_FallbackWhenDatePartSaturated(t *testing.T) {
	repo := &mockReservationRepo{}
	repo.findByNumberFunc = func(ctx context.Context, number string) (*model.Reservation, error) {
		// All plain RN-date-NNNN numbers are taken; the longer
		// microsecond form is free.
		if strings.Count(number, "-") == 2 {
			return &model.Reservation{ReservationNumber: number}, nil
		}
		return nil, reservationserrors.ErrNotFound
	}
	g := newIdentifierFixture(repo, &mockSeriesLookup{})

	number, err := g.NextReservationNumber(context.Background(), time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected fallback number, got error: %v", err)
	}
	if strings.Count(number, "-") != 3 {
		t.Errorf("expected microsecond fallback form, got %q", number)
	}
	if !strings.HasPrefix(number, "RN-20260310-") {
		t.Errorf("fallback must keep the date prefix, got %q", number)
	}
}

func TestNextReservationNumber_Exhausted(t *testing.T) {
	repo := &mockReservationRepo{}
	repo.findByNumberFunc = func(ctx context.Context, number string) (*model.Reservation, error) {
		return &model.Reservation{ReservationNumber: number}, nil
	}
	g := newIdentifierFixture(repo, &mockSeriesLookup{})

	_, err := g.NextReservationNumber(context.Background(), time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected exhaustion error when every candidate is taken")
	}
	if !apperrors.IsCode(err, apperrors.CodeIdentifierExhausted) {
		t.Errorf("expected IDENTIFIER_EXHAUSTED, got: %v", err)
	}
}

func TestNextChildNumber(t *testing.T) {
	g := newIdentifierFixture(&mockReservationRepo{}, &mockSeriesLookup{})

	got, err := g.NextChildNumber(context.Background(), time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), "0042", 3)
	if err != nil {
		t.Fatalf("expected child number, got error: %v", err)
	}
	if got != "RN-20260312-0042-3" {
		t.Errorf("expected RN-20260312-0042-3, got %q", got)
	}
}

func TestNextChildNumber_CollisionFallsBack(t *testing.T) {
	repo := &mockReservationRepo{}
	calls := 0
	repo.findByNumberFunc = func(ctx context.Context, number string) (*model.Reservation, error) {
		calls++
		if calls == 1 {
			return &model.Reservation{ReservationNumber: number}, nil
		}
		return nil, reservationserrors.ErrNotFound
	}
	g := newIdentifierFixture(repo, &mockSeriesLookup{})

	got, err := g.NextChildNumber(context.Background(), time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), "0042", 3)
	if err != nil {
		t.Fatalf("expected fallback child number, got error: %v", err)
	}
	if !strings.HasPrefix(got, "RN-20260312-") {
		t.Errorf("fallback keeps the occurrence date, got %q", got)
	}
	if got == "RN-20260312-0042-3" {
		t.Error("fallback must not reuse the colliding number")
	}
}

func TestNextReservationNumber_ConcurrentBurst(t *testing.T) {
	var mu sync.Mutex
	claimed := map[string]bool{}

	repo := &mockReservationRepo{}
	// The probe claims the candidate atomically, standing in for the
	// unique index that arbitrates real concurrent inserts.
	repo.findByNumberFunc = func(ctx context.Context, number string) (*model.Reservation, error) {
		mu.Lock()
		defer mu.Unlock()
		if claimed[number] {
			return &model.Reservation{ReservationNumber: number}, nil
		}
		claimed[number] = true
		return nil, reservationserrors.ErrNotFound
	}
	g := newIdentifierFixture(repo, &mockSeriesLookup{})

	const workers = 64
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := g.NextReservationNumber(context.Background(), time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
			if err != nil {
				t.Errorf("unexpected error in burst: %v", err)
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for number := range numbers {
		if seen[number] {
			t.Errorf("number %s handed out twice", number)
		}
		seen[number] = true
	}
}

func TestNextReservationCode_Format(t *testing.T) {
	g := newIdentifierFixture(&mockReservationRepo{}, &mockSeriesLookup{})

	code, err := g.NextReservationCode(context.Background())
	if err != nil {
		t.Fatalf("expected a reservation code, got error: %v", err)
	}
	if !codePattern.MatchString(code) {
		t.Errorf("expected 8 uppercase alphanumerics, got %q", code)
	}
}

func TestNextReservationCode_ChecksSeriesNamespace(t *testing.T) {
	lookup := &mockSeriesLookup{}
	lookup.codeExistsFunc = func(ctx context.Context, code string) (bool, error) {
		return true, nil
	}
	g := newIdentifierFixture(&mockReservationRepo{}, lookup)

	_, err := g.NextReservationCode(context.Background())
	if err == nil {
		t.Fatal("expected exhaustion when the series namespace owns every code")
	}
	if !apperrors.IsCode(err, apperrors.CodeIdentifierExhausted) {
		t.Errorf("expected IDENTIFIER_EXHAUSTED, got: %v", err)
	}
}

func TestNextReservationCode_DistinctAcrossCalls(t *testing.T) {
	g := newIdentifierFixture(&mockReservationRepo{}, &mockSeriesLookup{})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := g.NextReservationCode(context.Background())
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		seen[code] = true
	}
	// 36^8 codes: 50 draws colliding would point at a broken generator.
	if len(seen) < 49 {
		t.Errorf("expected distinct codes, got %d unique of 50", len(seen))
	}
}
