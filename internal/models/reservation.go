package models

import "time"

type ReservationStatus string

const (
	StatusReserved  ReservationStatus = "reserved"
	StatusPurchased ReservationStatus = "purchased"
	StatusExpired   ReservationStatus = "expired"
	// StatusCanceled exists in the schema but no operation moves a reservation into it.
	StatusCanceled ReservationStatus = "canceled"
)

// Statuses lists every value accepted by the reservations_status_check constraint.
var Statuses = []ReservationStatus{StatusReserved, StatusPurchased, StatusExpired, StatusCanceled}

func (s ReservationStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// transitions holds the only forward moves. Terminal states have no entry.
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusReserved: {StatusPurchased, StatusExpired},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// PaymentReferenceMaxLength is the width of the payment_reference column.
const PaymentReferenceMaxLength = 64

type Reservation struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	EventID          uint              `gorm:"not null;index:idx_reservations_event_status,priority:1;index:idx_reservations_event_status_expires,priority:1" json:"event_id"`
	Status           ReservationStatus `gorm:"type:varchar(20);not null;default:'reserved';index;index:idx_reservations_event_status,priority:2;index:idx_reservations_event_status_expires,priority:2" json:"status"`
	ExpiresAt        *time.Time        `gorm:"index;index:idx_reservations_event_status_expires,priority:3" json:"expires_at"`
	PurchasedAt      *time.Time        `gorm:"index" json:"purchased_at,omitempty"`
	PaymentReference *string           `gorm:"type:varchar(64)" json:"payment_reference,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
}

// Active reports whether the reservation still holds capacity at now.
func (r *Reservation) Active(now time.Time) bool {
	return r.Status == StatusReserved && r.ExpiresAt != nil && r.ExpiresAt.After(now)
}

// Expirable reports whether the sweep may move the reservation to expired at now.
func (r *Reservation) Expirable(now time.Time) bool {
	return r.Status == StatusReserved && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Purchasable reports whether reserved -> purchased is allowed at now.
func (r *Reservation) Purchasable(now time.Time) bool {
	return CanTransition(r.Status, StatusPurchased) && r.Active(now)
}
