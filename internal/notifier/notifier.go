// Package notifier publishes reservation lifecycle events. Services
// treat publication as fire and forget: a broker outage must never fail
// a booking that already committed.
package notifier

import (
	"context"
	"reservo/pkg/model"
)

const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
	EventSeriesCreated        = "series.created"
	EventSeriesUpdated        = "series.updated"
	EventSeriesCancelled      = "series.cancelled"
)

type Notifier interface {
	ReservationCreated(ctx context.Context, reservation *model.Reservation)
	ReservationUpdated(ctx context.Context, reservation *model.Reservation, changedFields []string)
	ReservationCancelled(ctx context.Context, reservation *model.Reservation)
	SeriesCreated(ctx context.Context, series *model.RecurringSeries, result *model.ExpansionResult)
	SeriesUpdated(ctx context.Context, series *model.RecurringSeries)
	SeriesCancelled(ctx context.Context, series *model.RecurringSeries, cancelledChildren int64)
}

// Noop is used when event publishing is disabled.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) ReservationCreated(context.Context, *model.Reservation)           {}
func (Noop) ReservationUpdated(context.Context, *model.Reservation, []string) {}
func (Noop) ReservationCancelled(context.Context, *model.Reservation)         {}
func (Noop) SeriesCreated(context.Context, *model.RecurringSeries, *model.ExpansionResult) {
}
func (Noop) SeriesUpdated(context.Context, *model.RecurringSeries)          {}
func (Noop) SeriesCancelled(context.Context, *model.RecurringSeries, int64) {}
