package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/brokermsg"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"gorm.io/gorm"
)

const (
	DefaultReservationTTL            = 15 * time.Minute
	DefaultPaymentReferenceMaxLength = models.PaymentReferenceMaxLength
)

// Publisher delivers lifecycle notifications after commit.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Options struct {
	ReservationTTL            time.Duration
	PaymentReferenceMaxLength int
}

type ReservationService interface {
	Reserve(ctx context.Context, eventID uint, now time.Time) (*models.Reservation, error)
	Purchase(ctx context.Context, reservationID uint, paymentRef *string, now time.Time) (*models.Reservation, error)
	GetEventSnapshot(ctx context.Context, eventID uint, now time.Time) (*EventSnapshot, error)
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)
	ListReservations(ctx context.Context, eventID uint, status *models.ReservationStatus) ([]models.Reservation, error)
	ValidatePaymentReference(ref *string) error
}

type EventSnapshot struct {
	Event models.Event
	Availability
}

type reservationService struct {
	tx              repository.Transactor
	reservationRepo repository.ReservationRepository
	eventRepo       repository.EventRepository
	publisher       Publisher
	log             *slog.Logger

	ttl             time.Duration
	maxPaymentRefLn int
}

// NewReservationService wires the reservation lifecycle. publisher may be nil.
func NewReservationService(
	tx repository.Transactor,
	reservationRepo repository.ReservationRepository,
	eventRepo repository.EventRepository,
	publisher Publisher,
	log *slog.Logger,
	opts Options,
) ReservationService {
	if opts.ReservationTTL <= 0 {
		opts.ReservationTTL = DefaultReservationTTL
	}
	if opts.PaymentReferenceMaxLength <= 0 || opts.PaymentReferenceMaxLength > models.PaymentReferenceMaxLength {
		opts.PaymentReferenceMaxLength = DefaultPaymentReferenceMaxLength
	}
	if log == nil {
		log = slog.Default()
	}
	return &reservationService{
		tx:              tx,
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		publisher:       publisher,
		log:             log,
		ttl:             opts.ReservationTTL,
		maxPaymentRefLn: opts.PaymentReferenceMaxLength,
	}
}

func (s *reservationService) Reserve(ctx context.Context, eventID uint, now time.Time) (*models.Reservation, error) {
	var result *models.Reservation

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		// 1. Lock the event row; concurrent reserves for the same event queue here.
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("lock event %d: %w", eventID, err)
		}

		// 2. Count under the lock
		avail, err := computeAvailability(ctx, s.reservationRepo, tx, event, now)
		if err != nil {
			return err
		}

		// 3. No capacity left
		if avail.Remaining() <= 0 {
			return ErrSoldOut
		}

		// 4. Hold one unit until now+TTL
		expiresAt := now.Add(s.ttl)
		reservation := &models.Reservation{
			EventID:   event.ID,
			Status:    models.StatusReserved,
			ExpiresAt: &expiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		result = reservation
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	s.publish(ctx, brokermsg.TopicReservationCreated, brokermsg.ReservationCreatedMessage{
		ReservationID: result.ID,
		EventID:       result.EventID,
		ExpiresAt:     *result.ExpiresAt,
	})
	return result, nil
}

func (s *reservationService) Purchase(ctx context.Context, reservationID uint, paymentRef *string, now time.Time) (*models.Reservation, error) {
	if err := s.ValidatePaymentReference(paymentRef); err != nil {
		return nil, err
	}

	var result *models.Reservation

	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		// 1. Lock the reservation row
		locked, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("lock reservation %d: %w", reservationID, err)
		}

		// 2. Reject terminal or stale reservations
		if locked.Status == models.StatusPurchased {
			return ErrAlreadyPurchased
		}
		if !locked.Purchasable(now) {
			return ErrInvalidOrExpired
		}

		// 3. Conditional write; the predicate is re-evaluated by the database
		affected, err := s.reservationRepo.MarkPurchased(ctx, tx, reservationID, now, paymentRef)
		if err != nil {
			return fmt.Errorf("mark reservation %d purchased: %w", reservationID, err)
		}

		current, err := s.reservationRepo.FindByID(ctx, tx, reservationID)
		if err != nil {
			return fmt.Errorf("reload reservation %d: %w", reservationID, err)
		}

		// 4. Lost the race
		if affected == 0 {
			if current.Status == models.StatusPurchased || current.PurchasedAt != nil {
				return ErrAlreadyPurchased
			}
			return ErrInvalidOrExpired
		}

		result = current
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	purchasedAt := now
	if result.PurchasedAt != nil {
		purchasedAt = *result.PurchasedAt
	}
	s.publish(ctx, brokermsg.TopicReservationPurchased, brokermsg.ReservationPurchasedMessage{
		ReservationID:    result.ID,
		EventID:          result.EventID,
		PurchasedAt:      purchasedAt,
		PaymentReference: result.PaymentReference,
	})
	return result, nil
}

// GetEventSnapshot reads counts without the inventory lock; the numbers are informational.
func (s *reservationService) GetEventSnapshot(ctx context.Context, eventID uint, now time.Time) (*EventSnapshot, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, classify(fmt.Errorf("find event %d: %w", eventID, err))
	}

	avail, err := computeAvailability(ctx, s.reservationRepo, nil, event, now)
	if err != nil {
		return nil, classify(err)
	}
	return &EventSnapshot{Event: *event, Availability: avail}, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, classify(fmt.Errorf("find reservation %d: %w", id, err))
	}
	return reservation, nil
}

func (s *reservationService) ListReservations(ctx context.Context, eventID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	if status != nil && !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *status)}
	}
	reservations, err := s.reservationRepo.FindByEventID(ctx, eventID, status)
	if err != nil {
		return nil, classify(fmt.Errorf("list reservations for event %d: %w", eventID, err))
	}
	return reservations, nil
}

// ValidatePaymentReference enforces the maximum length, counted in characters.
func (s *reservationService) ValidatePaymentReference(ref *string) error {
	if ref == nil {
		return nil
	}
	if n := utf8.RuneCountInString(*ref); n > s.maxPaymentRefLn {
		return &ValidationError{
			Field:   "payment_reference",
			Message: fmt.Sprintf("may not be greater than %d characters", s.maxPaymentRefLn),
		}
	}
	return nil
}

// publish is best-effort: the operation already committed.
func (s *reservationService) publish(ctx context.Context, routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.log.Warn("publish lifecycle message failed", "routing_key", routingKey, "err", err)
	}
}
