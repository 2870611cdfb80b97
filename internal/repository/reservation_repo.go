package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	FindByEventID(ctx context.Context, eventID uint, status *models.ReservationStatus) ([]models.Reservation, error)
	CountPurchased(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error)
	CountActiveReserved(ctx context.Context, tx *gorm.DB, eventID uint, now time.Time) (int64, error)
	MarkPurchased(ctx context.Context, tx *gorm.DB, id uint, now time.Time, paymentRef *string) (int64, error)
	FindExpirableIDs(ctx context.Context, afterID uint, now time.Time, limit int) ([]uint, error)
	ExpireBatch(ctx context.Context, ids []uint, now time.Time) ([]models.Reservation, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// conn prefers the caller's transaction and falls back to the pool.
func (r *reservationRepository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return r.conn(ctx, tx).Omit(clause.Associations).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.conn(ctx, tx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.conn(ctx, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByEventID(ctx context.Context, eventID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) CountPurchased(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := r.conn(ctx, tx).
		Model(&models.Reservation{}).
		Where("event_id = ? AND status = ?", eventID, models.StatusPurchased).
		Count(&count).Error
	return count, err
}

func (r *reservationRepository) CountActiveReserved(ctx context.Context, tx *gorm.DB, eventID uint, now time.Time) (int64, error) {
	var count int64
	err := r.conn(ctx, tx).
		Model(&models.Reservation{}).
		Where("event_id = ? AND status = ? AND expires_at > ?", eventID, models.StatusReserved, now).
		Count(&count).Error
	return count, err
}

// MarkPurchased is the self-guarding write of a purchase: it only matches a row that is
// still reserved, unexpired and has never been purchased. The returned row count is 0
// when another writer got there first.
func (r *reservationRepository) MarkPurchased(ctx context.Context, tx *gorm.DB, id uint, now time.Time, paymentRef *string) (int64, error) {
	res := r.conn(ctx, tx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ? AND purchased_at IS NULL AND expires_at > ?", id, models.StatusReserved, now).
		Updates(map[string]any{
			"status":            models.StatusPurchased,
			"purchased_at":      now,
			"payment_reference": paymentRef,
			"updated_at":        now,
		})
	return res.RowsAffected, res.Error
}

// FindExpirableIDs returns up to limit ids past afterID, in id order.
func (r *reservationRepository) FindExpirableIDs(ctx context.Context, afterID uint, now time.Time, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ? AND id > ?", models.StatusReserved, now, afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// ExpireBatch flips the given ids to expired, re-checking status at write time so a
// purchase that landed after selection is left alone. Only rows actually changed are
// returned.
func (r *reservationRepository) ExpireBatch(ctx context.Context, ids []uint, now time.Time) ([]models.Reservation, error) {
	var expired []models.Reservation
	if len(ids) == 0 {
		return expired, nil
	}
	err := r.db.WithContext(ctx).
		Model(&expired).
		Clauses(clause.Returning{}).
		Where("id IN ? AND status = ? AND expires_at <= ?", ids, models.StatusReserved, now).
		Updates(map[string]any{
			"status":     models.StatusExpired,
			"updated_at": now,
		}).Error
	return expired, err
}
