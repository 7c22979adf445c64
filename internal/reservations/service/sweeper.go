package service

import (
	"context"
	"reservo/internal/reservations/repository"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	"time"
)

// Sweeper advances reservation statuses as time passes: confirmed
// reservations whose window opened become in_use, and anything whose
// window closed becomes expired. Both writes are conditioned on the
// current status, so running two sweepers side by side is harmless.
type Sweeper struct {
	repo  repository.ReservationRepository
	cfg   *config.Config
	clock clock.Clock
}

func NewSweeper(repo repository.ReservationRepository, cfg *config.Config, clk clock.Clock) *Sweeper {
	return &Sweeper{
		repo:  repo,
		cfg:   cfg,
		clock: clk,
	}
}

// RunOnce performs a single sweep and reports how many reservations
// moved in each direction. Cancelled reservations are never touched.
func (s *Sweeper) RunOnce(ctx context.Context) (inUse int64, expired int64, err error) {
	now := s.clock.Now()

	inUse, err = s.repo.MarkInUse(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Sweep failed to mark reservations in use", "error", err)
		return 0, 0, err
	}

	expired, err = s.repo.MarkExpired(ctx, now)
	if err != nil {
		s.cfg.Log.Error("Sweep failed to expire reservations", "error", err)
		return inUse, 0, err
	}

	if inUse > 0 || expired > 0 {
		s.cfg.Log.Info("Status sweep completed",
			"marked_in_use", inUse,
			"marked_expired", expired,
			"sweep_time", now,
		)
	}
	return inUse, expired, nil
}

// Run sweeps on the configured interval until the context is done. An
// individual sweep failure is logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	s.cfg.Log.Info("Status sweeper started", "interval", s.cfg.SweepInterval)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	if _, _, err := s.RunOnce(ctx); err != nil {
		s.cfg.Log.Warn("Initial status sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.cfg.Log.Info("Status sweeper stopped")
			return
		case <-ticker.C:
			if _, _, err := s.RunOnce(ctx); err != nil {
				s.cfg.Log.Warn("Status sweep failed", "error", err)
			}
		}
	}
}
