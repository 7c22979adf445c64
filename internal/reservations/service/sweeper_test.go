package service

import (
	"context"
	"errors"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	"reservo/pkg/logger"
	"testing"
	"time"
)

func newSweeperFixture(repo *mockReservationRepo) (*Sweeper, *clock.Fixed) {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	cfg := &config.Config{Log: log, SweepInterval: time.Minute}
	clk := clock.NewFixed(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	return NewSweeper(repo, cfg, clk), clk
}

func TestSweeper_RunOnceReportsTransitions(t *testing.T) {
	repo := &mockReservationRepo{}
	var gotNow time.Time
	repo.markInUseFunc = func(ctx context.Context, now time.Time) (int64, error) {
		gotNow = now
		return 2, nil
	}
	repo.markExpiredFunc = func(ctx context.Context, now time.Time) (int64, error) {
		return 3, nil
	}
	sweeper, clk := newSweeperFixture(repo)

	inUse, expired, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("expected sweep to succeed, got: %v", err)
	}
	if inUse != 2 || expired != 3 {
		t.Errorf("expected 2 in_use and 3 expired, got %d/%d", inUse, expired)
	}
	if !gotNow.Equal(clk.Instant) {
		t.Errorf("sweep must use the injected clock, got %v", gotNow)
	}
}

func TestSweeper_RunOnceIsIdempotent(t *testing.T) {
	repo := &mockReservationRepo{}
	calls := 0
	repo.markInUseFunc = func(ctx context.Context, now time.Time) (int64, error) {
		calls++
		if calls == 1 {
			return 4, nil
		}
		// Conditioned updates match nothing the second time around.
		return 0, nil
	}
	sweeper, _ := newSweeperFixture(repo)

	if _, _, err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	inUse, expired, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if inUse != 0 || expired != 0 {
		t.Errorf("second sweep should move nothing, got %d/%d", inUse, expired)
	}
}

func TestSweeper_RunOncePropagatesErrors(t *testing.T) {
	repo := &mockReservationRepo{}
	repo.markInUseFunc = func(ctx context.Context, now time.Time) (int64, error) {
		return 0, errors.New("connection reset")
	}
	sweeper, _ := newSweeperFixture(repo)

	if _, _, err := sweeper.RunOnce(context.Background()); err == nil {
		t.Fatal("expected sweep error to propagate")
	}
}

func TestSweeper_RunStopsOnContextCancel(t *testing.T) {
	repo := &mockReservationRepo{}
	sweeper, _ := newSweeperFixture(repo)
	sweeper.cfg.SweepInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
