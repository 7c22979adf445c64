// The sweeper can run standalone when the API deployment runs with its
// embedded sweep loop disabled, for example as a cron-style job.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"reservo/internal/reservations/repository"
	"reservo/internal/reservations/service"
	"reservo/pkg/clock"
	"reservo/pkg/config"
)

const ServiceName = "sweeper"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.Log.Info("Starting status sweeper")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	repo := repository.NewMongoReservationRepository(cfg)
	sweeper := service.NewSweeper(repo, cfg, clock.Real{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	sweeper.Run(ctx)
	cfg.Log.Info("Status sweeper stopped")
}
