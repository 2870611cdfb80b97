package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(err, c)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorHandler_DomainCode(t *testing.T) {
	err := echo.NewHTTPError(http.StatusConflict, service.ErrSoldOut.Error()).SetInternal(service.ErrSoldOut)

	rec, body := render(t, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "sold_out", body.Error)
	assert.Equal(t, "event is sold out", body.Message)
	assert.Empty(t, body.Errors)
}

func TestErrorHandler_Validation(t *testing.T) {
	ve := &service.ValidationError{Field: "payment_reference", Message: "may not be greater than 64 characters"}
	err := echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Error()).SetInternal(ve)

	rec, body := render(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_failed", body.Error)
	assert.Equal(t, []string{"may not be greater than 64 characters"}, body.Errors["payment_reference"])
}

func TestErrorHandler_UnavailableSetsRetryAfter(t *testing.T) {
	cause := fmt.Errorf("%w: lock timeout", service.ErrUnavailable)
	err := echo.NewHTTPError(http.StatusServiceUnavailable, cause.Error()).SetInternal(cause)

	rec, body := render(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "unavailable", body.Error)
}

func TestErrorHandler_PlainHTTPError(t *testing.T) {
	rec, body := render(t, echo.NewHTTPError(http.StatusBadRequest, "invalid event id"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", body.Error)
	assert.Equal(t, "invalid event id", body.Message)
}

func TestErrorHandler_RouteNotFound(t *testing.T) {
	rec, body := render(t, echo.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body.Error)
}

func TestErrorHandler_UnknownErrorHidesDetail(t *testing.T) {
	rec, body := render(t, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", body.Error)
	assert.Equal(t, "Internal Server Error", body.Message)
}
