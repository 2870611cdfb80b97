package service

import (
	"errors"
	"fmt"

	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/database"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSoldOut             = errors.New("event is sold out")
	ErrAlreadyPurchased    = errors.New("reservation already purchased")
	ErrInvalidOrExpired    = errors.New("reservation is invalid or expired")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnavailable         = errors.New("storage temporarily unavailable, retry the request")
)

// Wire codes returned to clients alongside the HTTP status.
const (
	CodeNotFound         = "not_found"
	CodeSoldOut          = "sold_out"
	CodeAlreadyPurchased = "already_purchased"
	CodeInvalidOrExpired = "invalid_or_expired_reservation"
	CodeValidation       = "validation_failed"
	CodeUnavailable      = "unavailable"
	CodeInternal         = "internal_error"
)

// ValidationError names the offending input field. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Code returns the stable wire code for err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrReservationNotFound):
		return CodeNotFound
	case errors.Is(err, ErrSoldOut):
		return CodeSoldOut
	case errors.Is(err, ErrAlreadyPurchased):
		return CodeAlreadyPurchased
	case errors.Is(err, ErrInvalidOrExpired):
		return CodeInvalidOrExpired
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

// classify tags transient storage failures as ErrUnavailable. Domain outcomes pass through.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if database.IsRetryable(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
