package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/brokermsg"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

type EventConsumer struct {
	events repository.EventRepository
	log    *slog.Logger
	now    func() time.Time
}

func NewEventConsumer(events repository.EventRepository, log *slog.Logger) *EventConsumer {
	if log == nil {
		log = slog.Default()
	}
	return &EventConsumer{events: events, log: log, now: time.Now}
}

// Start upserts every delivered event into the local events table until msgs closes or ctx
// is done. The returned channel closes when the loop exits.
func (ec *EventConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				ec.log.Info("event consumer stopping")
				return
			case msg, ok := <-msgs:
				if !ok {
					ec.log.Warn("event consumer channel closed")
					return
				}
				ec.handleMessage(ctx, msg)
			}
		}
	}()
	return done
}

func (ec *EventConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	switch msg.RoutingKey {
	case brokermsg.TopicEventCreated, brokermsg.TopicEventUpdated:
	default:
		ec.log.Debug("ignoring event message", "routing_key", msg.RoutingKey)
		_ = msg.Ack(false)
		return
	}

	var in brokermsg.EventSyncedMessage
	if err := json.Unmarshal(msg.Body, &in); err != nil {
		ec.log.Error("discarding malformed event message", "routing_key", msg.RoutingKey, "err", err)
		_ = msg.Nack(false, false)
		return
	}
	capacity, ok := in.SeatCapacity()
	if in.ID == 0 || !ok || capacity < 0 {
		ec.log.Error("discarding invalid event message", "event_id", in.ID, "has_capacity", ok, "capacity", capacity)
		_ = msg.Nack(false, false)
		return
	}

	now := ec.now().UTC()
	event := &models.Event{
		ID:        in.ID,
		Name:      in.Name,
		Capacity:  capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ec.events.Upsert(ctx, event); err != nil {
		ec.log.Error("event upsert failed, requeueing", "event_id", in.ID, "err", err)
		_ = msg.Nack(false, true)
		return
	}

	ec.log.Info("synced event", "event_id", in.ID, "name", in.Name, "capacity", capacity)
	_ = msg.Ack(false)
}
