package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		want     bool
	}{
		{StatusReserved, StatusPurchased, true},
		{StatusReserved, StatusExpired, true},
		{StatusReserved, StatusCanceled, false},
		{StatusPurchased, StatusReserved, false},
		{StatusPurchased, StatusExpired, false},
		{StatusExpired, StatusReserved, false},
		{StatusExpired, StatusPurchased, false},
		{StatusCanceled, StatusReserved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusReserved.Terminal())
	assert.True(t, StatusPurchased.Terminal())
	assert.True(t, StatusExpired.Terminal())
	assert.False(t, ReservationStatus("bogus").Terminal())
	assert.False(t, ReservationStatus("bogus").Valid())
}

func TestReservation_ActiveAndExpirable(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(10 * time.Minute)

	fresh := &Reservation{Status: StatusReserved, ExpiresAt: &future}
	assert.True(t, fresh.Active(now))
	assert.False(t, fresh.Expirable(now))
	assert.True(t, fresh.Purchasable(now))

	stale := &Reservation{Status: StatusReserved, ExpiresAt: &past}
	assert.False(t, stale.Active(now))
	assert.True(t, stale.Expirable(now))
	assert.False(t, stale.Purchasable(now))

	// expires_at == now is no longer active
	edge := &Reservation{Status: StatusReserved, ExpiresAt: &now}
	assert.False(t, edge.Active(now))
	assert.True(t, edge.Expirable(now))

	bought := &Reservation{Status: StatusPurchased, ExpiresAt: &future}
	assert.False(t, bought.Active(now))
	assert.False(t, bought.Purchasable(now))

	noExpiry := &Reservation{Status: StatusReserved}
	assert.False(t, noExpiry.Active(now))
	assert.False(t, noExpiry.Expirable(now))
}
