package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
)

// ExpiryWorker runs the expiry sweep on a fixed interval.
type ExpiryWorker struct {
	log      *slog.Logger
	expiry   service.ExpiryService
	interval time.Duration
	now      func() time.Time
}

func NewExpiryWorker(log *slog.Logger, expiry service.ExpiryService, interval time.Duration) *ExpiryWorker {
	if log == nil {
		log = slog.Default()
	}
	return &ExpiryWorker{
		log:      log,
		expiry:   expiry,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once per tick until ctx is done. A failed sweep is logged and retried on the
// next tick; rows it already expired stay expired.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("expiry worker stopping")
			return nil
		case <-t.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	now := w.now().UTC()
	n, err := w.expiry.ExpireStale(ctx, now)
	if err != nil {
		w.log.Error("expiry sweep failed", "expired_before_error", n, "err", err)
		return
	}
	if n > 0 {
		w.log.Info("expired reservations", "count", n, "now", now)
	}
}
