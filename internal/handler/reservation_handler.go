package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/models"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	svc    service.ReservationService
	expiry service.ExpiryService
	now    func() time.Time
}

// NewReservationHandler takes the clock every request reads "now" from; nil means time.Now.
func NewReservationHandler(svc service.ReservationService, expiry service.ExpiryService, now func() time.Time) *ReservationHandler {
	if now == nil {
		now = time.Now
	}
	return &ReservationHandler{svc: svc, expiry: expiry, now: now}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	events := e.Group("/api/v1/events")
	events.GET("/:id", h.GetEvent)
	events.POST("/:id/reserve", h.Reserve)
	events.GET("/:id/reservations", h.ListReservations)

	reservations := e.Group("/api/v1/reservations")
	reservations.POST("/expire", h.Expire)
	reservations.GET("/:id", h.GetReservation)
	reservations.POST("/:id/purchase", h.Purchase)
}

func (h *ReservationHandler) GetEvent(c echo.Context) error {
	eventID, err := parseID(c, "invalid event id")
	if err != nil {
		return err
	}

	snap, err := h.svc.GetEventSnapshot(c.Request().Context(), eventID, h.clock())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventSnapshotResponse(snap))
}

func (h *ReservationHandler) Reserve(c echo.Context) error {
	eventID, err := parseID(c, "invalid event id")
	if err != nil {
		return err
	}

	reservation, err := h.svc.Reserve(c.Request().Context(), eventID, h.clock())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) Purchase(c echo.Context) error {
	reservationID, err := parseID(c, "invalid reservation id")
	if err != nil {
		return err
	}

	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ref := req.Reference()
	if err := h.svc.ValidatePaymentReference(ref); err != nil {
		return httpError(err)
	}

	reservation, err := h.svc.Purchase(c.Request().Context(), reservationID, ref, h.clock())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, err := parseID(c, "invalid reservation id")
	if err != nil {
		return err
	}

	reservation, err := h.svc.GetReservation(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) ListReservations(c echo.Context) error {
	eventID, err := parseID(c, "invalid event id")
	if err != nil {
		return err
	}

	var status *models.ReservationStatus
	if s := c.QueryParam("status"); s != "" {
		rs := models.ReservationStatus(s)
		status = &rs
	}

	reservations, err := h.svc.ListReservations(c.Request().Context(), eventID, status)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		resp[i] = dto.ToReservationResponse(&reservations[i])
	}

	return c.JSON(http.StatusOK, resp)
}

// Expire runs one sweep synchronously, for operators and schedulers outside the process.
func (h *ReservationHandler) Expire(c echo.Context) error {
	n, err := h.expiry.ExpireStale(c.Request().Context(), h.clock())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ExpireResponse{Expired: n})
}

func (h *ReservationHandler) clock() time.Time {
	return h.now().UTC()
}

func parseID(c echo.Context, msg string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return uint(id), nil
}

// httpError maps a service error to its status and keeps the cause for the error handler.
func httpError(err error) *echo.HTTPError {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrReservationNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrSoldOut),
		errors.Is(err, service.ErrAlreadyPurchased),
		errors.Is(err, service.ErrInvalidOrExpired):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidInput):
		status, msg = http.StatusUnprocessableEntity, "the given data was invalid"
	case errors.Is(err, service.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, service.ErrUnavailable.Error()
	}

	return echo.NewHTTPError(status, msg).SetInternal(err)
}
