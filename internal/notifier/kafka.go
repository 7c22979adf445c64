package notifier

import (
	"context"
	"strings"

	"reservo/pkg/kafka"
	"reservo/pkg/locale"
	"reservo/pkg/logger"
	"reservo/pkg/model"
	"reservo/pkg/sealer"

	"github.com/google/uuid"
)

const schemaVersion = "1.0"

// KafkaNotifier publishes lifecycle events to a single topic, keyed by
// equipment ID so all events for one unit land in the same partition.
type KafkaNotifier struct {
	producer *kafka.Producer
	source   string
	logger   *logger.Logger
}

func NewKafkaNotifier(producer *kafka.Producer, source string, log *logger.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		source:   source,
		logger:   log,
	}
}

type reservationEvent struct {
	Reservation   *model.Reservation `json:"reservation"`
	ChangedFields []string           `json:"changed_fields,omitempty"`

	// ManageToken lets a downstream sender build a self-contained
	// manage link; RequesterTimezone helps it localize times when the
	// contact is a phone number.
	ManageToken       string `json:"manage_token,omitempty"`
	RequesterTimezone string `json:"requester_timezone,omitempty"`
}

type seriesEvent struct {
	Series            *model.RecurringSeries `json:"series"`
	Expansion         *model.ExpansionResult `json:"expansion,omitempty"`
	CancelledChildren int64                  `json:"cancelled_children,omitempty"`
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType, key string, payload any) {
	msg := kafka.NewMessage().
		WithKey(key).
		WithEventID(uuid.NewString()).
		WithEventType(eventType).
		WithSource(n.source).
		WithSchemaVersion(schemaVersion).
		WithValue(payload).
		Build()

	if err := n.producer.Publish(ctx, msg); err != nil {
		n.logger.Error("Failed to publish event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
	}
}

func (n *KafkaNotifier) reservationEvent(r *model.Reservation, changedFields []string) reservationEvent {
	event := reservationEvent{
		Reservation:   r,
		ChangedFields: changedFields,
	}

	token, err := sealer.CreateOpaqueToken(r.ID, r.ReservationCode)
	if err != nil {
		n.logger.Warn("Failed to seal manage token", "reservation_id", r.ID, "error", err)
	} else {
		event.ManageToken = token
	}

	if strings.HasPrefix(r.RequesterContact, "+") {
		event.RequesterTimezone = locale.InferTimezoneFromPhone(r.RequesterContact)
	}
	return event
}

func (n *KafkaNotifier) ReservationCreated(ctx context.Context, r *model.Reservation) {
	n.publish(ctx, EventReservationCreated, r.EquipmentID, n.reservationEvent(r, nil))
}

func (n *KafkaNotifier) ReservationUpdated(ctx context.Context, r *model.Reservation, changedFields []string) {
	n.publish(ctx, EventReservationUpdated, r.EquipmentID, n.reservationEvent(r, changedFields))
}

func (n *KafkaNotifier) ReservationCancelled(ctx context.Context, r *model.Reservation) {
	n.publish(ctx, EventReservationCancelled, r.EquipmentID, n.reservationEvent(r, nil))
}

func (n *KafkaNotifier) SeriesCreated(ctx context.Context, s *model.RecurringSeries, result *model.ExpansionResult) {
	n.publish(ctx, EventSeriesCreated, s.EquipmentID, seriesEvent{Series: s, Expansion: result})
}

func (n *KafkaNotifier) SeriesUpdated(ctx context.Context, s *model.RecurringSeries) {
	n.publish(ctx, EventSeriesUpdated, s.EquipmentID, seriesEvent{Series: s})
}

func (n *KafkaNotifier) SeriesCancelled(ctx context.Context, s *model.RecurringSeries, cancelledChildren int64) {
	n.publish(ctx, EventSeriesCancelled, s.EquipmentID, seriesEvent{
		Series:            s,
		CancelledChildren: cancelledChildren,
	})
}
