package dto

import (
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
)

type ReservationResponse struct {
	ID               uint                     `json:"id"`
	EventID          uint                     `json:"event_id"`
	Status           models.ReservationStatus `json:"status"`
	ExpiresAt        *time.Time               `json:"expires_at"`
	PurchasedAt      *time.Time               `json:"purchased_at"`
	PaymentReference *string                  `json:"payment_reference"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

type EventSnapshotResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Purchased int64     `json:"purchased"`
	Reserved  int64     `json:"reserved"`
	Available int64     `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ExpireResponse struct {
	Expired int64 `json:"expired"`
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:               r.ID,
		EventID:          r.EventID,
		Status:           r.Status,
		ExpiresAt:        r.ExpiresAt,
		PurchasedAt:      r.PurchasedAt,
		PaymentReference: r.PaymentReference,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToEventSnapshotResponse reports availability floored at zero.
func ToEventSnapshotResponse(s *service.EventSnapshot) EventSnapshotResponse {
	return EventSnapshotResponse{
		ID:        s.Event.ID,
		Name:      s.Event.Name,
		Capacity:  s.Event.Capacity,
		Purchased: s.Purchased,
		Reserved:  s.ActiveReserved,
		Available: s.Available(),
		CreatedAt: s.Event.CreatedAt,
		UpdatedAt: s.Event.UpdatedAt,
	}
}
