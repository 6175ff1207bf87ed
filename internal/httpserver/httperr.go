package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusprint/print-service/internal/service"
	"github.com/campusprint/print-service/internal/transport"
)

// DevMode controls whether error details beyond the stable code and message
// are exposed in responses.
var DevMode bool

func codeFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrSignatureMismatch):
		return http.StatusBadRequest, "signature_mismatch"
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized, "auth_error"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrAlreadyLinked):
		return http.StatusConflict, "already_linked"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrGatewayUnavailable):
		return http.StatusBadGateway, "gateway_unavailable"
	default:
		return http.StatusInternalServerError, "persistence_error"
	}
}

// respondError maps a service error to a stable machine-readable code plus a
// human-readable message. Internals leak only in dev mode.
func respondError(c echo.Context, err error) error {
	status, code := codeFor(err)

	resp := transport.ErrorResponse{
		Success: false,
		Code:    code,
		Message: publicMessage(err, status),
	}
	if DevMode {
		resp.Stack = fmt.Sprintf("%+v", err)
	}
	return c.JSON(status, resp)
}

func publicMessage(err error, status int) string {
	if status < http.StatusInternalServerError || DevMode {
		return err.Error()
	}
	return "internal error"
}
