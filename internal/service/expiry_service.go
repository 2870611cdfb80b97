package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/brokermsg"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
)

// DefaultExpiryBatchSize bounds the ids loaded and updated per statement.
const DefaultExpiryBatchSize = 500

type ExpiryService interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type expiryService struct {
	reservationRepo repository.ReservationRepository
	publisher       Publisher
	log             *slog.Logger
	batchSize       int
}

// NewExpiryService builds the sweep. publisher may be nil; batchSize <= 0 uses the default.
func NewExpiryService(reservationRepo repository.ReservationRepository, publisher Publisher, log *slog.Logger, batchSize int) ExpiryService {
	if batchSize <= 0 {
		batchSize = DefaultExpiryBatchSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &expiryService{
		reservationRepo: reservationRepo,
		publisher:       publisher,
		log:             log,
		batchSize:       batchSize,
	}
}

// ExpireStale moves every reserved row with expires_at <= now to expired and returns how
// many rows it changed. Running it again with the same now changes nothing.
func (s *expiryService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	var (
		total   int64
		afterID uint
	)

	for {
		ids, err := s.reservationRepo.FindExpirableIDs(ctx, afterID, now, s.batchSize)
		if err != nil {
			return total, classify(fmt.Errorf("select expirable reservations: %w", err))
		}
		if len(ids) == 0 {
			break
		}

		expired, err := s.reservationRepo.ExpireBatch(ctx, ids, now)
		if err != nil {
			return total, classify(fmt.Errorf("expire batch after id %d: %w", afterID, err))
		}
		total += int64(len(expired))

		for _, r := range expired {
			s.publish(ctx, brokermsg.ReservationExpiredMessage{ReservationID: r.ID, EventID: r.EventID})
		}

		afterID = ids[len(ids)-1]
		if len(ids) < s.batchSize {
			break
		}
	}

	return total, nil
}

func (s *expiryService) publish(ctx context.Context, msg brokermsg.ReservationExpiredMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, brokermsg.TopicReservationExpired, msg); err != nil {
		s.log.Warn("publish expiry message failed", "reservation_id", msg.ReservationID, "err", err)
	}
}
