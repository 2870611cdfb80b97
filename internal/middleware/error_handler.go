package middleware

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/booking-microservice/reservation-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {"error": code, "message": msg}. Handlers attach the
// service error as the HTTPError's internal error so the wire code can be derived from it.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := http.StatusText(status)
	cause := err

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
		cause = he.Internal
	}

	body := dto.ErrorResponse{Error: errorCode(status, cause), Message: msg}

	var ve *service.ValidationError
	if errors.As(cause, &ve) {
		body.Errors = map[string][]string{ve.Field: {ve.Message}}
	}

	if status == http.StatusServiceUnavailable {
		c.Response().Header().Set("Retry-After", "1")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

func errorCode(status int, cause error) string {
	if cause != nil {
		if code := service.Code(cause); code != service.CodeInternal {
			return code
		}
	}
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return service.CodeNotFound
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusUnprocessableEntity:
		return service.CodeValidation
	case http.StatusServiceUnavailable:
		return service.CodeUnavailable
	default:
		return service.CodeInternal
	}
}
