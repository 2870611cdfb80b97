// Package brokermsg holds the routing keys and payloads exchanged over RabbitMQ.
package brokermsg

import "time"

// Routing keys on the events exchange, published by event-service.
const (
	TopicEventCreated = "event.created"
	TopicEventUpdated = "event.updated"
)

// Routing keys on the reservations exchange, published by this service.
const (
	TopicReservationCreated   = "reservation.created"
	TopicReservationPurchased = "reservation.purchased"
	TopicReservationExpired   = "reservation.expired"
)

// EventSyncedMessage is the subset of an event-service event this service stores.
// event-service sends its seat count as max_seats; capacity is accepted as well.
type EventSyncedMessage struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Capacity *int   `json:"capacity"`
	MaxSeats *int   `json:"max_seats"`
}

// SeatCapacity returns capacity when present, otherwise max_seats. ok is false when the
// message carries neither.
func (m EventSyncedMessage) SeatCapacity() (n int, ok bool) {
	switch {
	case m.Capacity != nil:
		return *m.Capacity, true
	case m.MaxSeats != nil:
		return *m.MaxSeats, true
	default:
		return 0, false
	}
}

type ReservationCreatedMessage struct {
	ReservationID uint      `json:"reservation_id"`
	EventID       uint      `json:"event_id"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type ReservationPurchasedMessage struct {
	ReservationID    uint      `json:"reservation_id"`
	EventID          uint      `json:"event_id"`
	PurchasedAt      time.Time `json:"purchased_at"`
	PaymentReference *string   `json:"payment_reference,omitempty"`
}

type ReservationExpiredMessage struct {
	ReservationID uint `json:"reservation_id"`
	EventID       uint `json:"event_id"`
}
