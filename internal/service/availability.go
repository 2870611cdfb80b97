package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"gorm.io/gorm"
)

type Availability struct {
	Capacity       int   `json:"capacity"`
	Purchased      int64 `json:"purchased"`
	ActiveReserved int64 `json:"reserved"`
}

// Remaining may be zero or negative; callers reject admission when it is not positive.
func (a Availability) Remaining() int64 {
	return int64(a.Capacity) - a.Purchased - a.ActiveReserved
}

// Available is Remaining floored at zero, for external callers.
func (a Availability) Available() int64 {
	return max(0, a.Remaining())
}

// computeAvailability counts against tx so that, when tx holds the event lock, the
// numbers cannot move until commit.
func computeAvailability(ctx context.Context, repo repository.ReservationRepository, tx *gorm.DB, event *models.Event, now time.Time) (Availability, error) {
	purchased, err := repo.CountPurchased(ctx, tx, event.ID)
	if err != nil {
		return Availability{}, fmt.Errorf("count purchased: %w", err)
	}
	reserved, err := repo.CountActiveReserved(ctx, tx, event.ID, now)
	if err != nil {
		return Availability{}, fmt.Errorf("count active reserved: %w", err)
	}
	return Availability{
		Capacity:       event.Capacity,
		Purchased:      purchased,
		ActiveReserved: reserved,
	}, nil
}
