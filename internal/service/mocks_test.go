package service

import (
	"context"
	"sync"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"gorm.io/gorm"
)

// --- Mock Transactor ---

type mockTx struct {
	calls int
	err   error
}

func (m *mockTx) WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(nil)
}

// --- Mock EventRepository ---

type mockEventRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.Event, error)
	lockFn     func(ctx context.Context, id uint) (*models.Event, error)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	return m.lockFn(ctx, id)
}
func (m *mockEventRepo) Upsert(ctx context.Context, event *models.Event) error { return nil }

// --- Mock ReservationRepository ---

type mockReservationRepo struct {
	createFn         func(ctx context.Context, r *models.Reservation) error
	findByIDFn       func(ctx context.Context, id uint) (*models.Reservation, error)
	lockFn           func(ctx context.Context, id uint) (*models.Reservation, error)
	findByEventFn    func(ctx context.Context, eventID uint, status *models.ReservationStatus) ([]models.Reservation, error)
	countPurchasedFn func(ctx context.Context, eventID uint) (int64, error)
	countActiveFn    func(ctx context.Context, eventID uint, now time.Time) (int64, error)
	markPurchasedFn  func(ctx context.Context, id uint, now time.Time, ref *string) (int64, error)
	findExpirableFn  func(ctx context.Context, afterID uint, now time.Time, limit int) ([]uint, error)
	expireBatchFn    func(ctx context.Context, ids []uint, now time.Time) ([]models.Reservation, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, tx *gorm.DB, r *models.Reservation) error {
	return m.createFn(ctx, r)
}
func (m *mockReservationRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockReservationRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	return m.lockFn(ctx, id)
}
func (m *mockReservationRepo) FindByEventID(ctx context.Context, eventID uint, status *models.ReservationStatus) ([]models.Reservation, error) {
	return m.findByEventFn(ctx, eventID, status)
}
func (m *mockReservationRepo) CountPurchased(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	if m.countPurchasedFn == nil {
		return 0, nil
	}
	return m.countPurchasedFn(ctx, eventID)
}
func (m *mockReservationRepo) CountActiveReserved(ctx context.Context, tx *gorm.DB, eventID uint, now time.Time) (int64, error) {
	if m.countActiveFn == nil {
		return 0, nil
	}
	return m.countActiveFn(ctx, eventID, now)
}
func (m *mockReservationRepo) MarkPurchased(ctx context.Context, tx *gorm.DB, id uint, now time.Time, ref *string) (int64, error) {
	return m.markPurchasedFn(ctx, id, now, ref)
}
func (m *mockReservationRepo) FindExpirableIDs(ctx context.Context, afterID uint, now time.Time, limit int) ([]uint, error) {
	return m.findExpirableFn(ctx, afterID, now, limit)
}
func (m *mockReservationRepo) ExpireBatch(ctx context.Context, ids []uint, now time.Time) ([]models.Reservation, error) {
	return m.expireBatchFn(ctx, ids, now)
}

// --- Recording Publisher ---

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key: routingKey, payload: payload})
	return p.err
}

// --- Helpers ---

var fixedNow = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }
