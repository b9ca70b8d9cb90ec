package handler

import (
	"errors"
	"net/http"

	"jersey-storefront/internal/client"
	"jersey-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// toHTTPError maps service sentinels onto status codes. Anything unmapped is
// returned unchanged and rendered as a generic 500.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrMissingSessionID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, client.ErrInvalidSignature),
		errors.Is(err, client.ErrMalformedEvent):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook").SetInternal(err)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSession):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(err)
	case errors.Is(err, service.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found").SetInternal(err)
	case errors.Is(err, service.ErrAdminNotConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
	case errors.Is(err, service.ErrProviderRejected):
		return echo.NewHTTPError(http.StatusBadGateway).SetInternal(err)
	case errors.Is(err, service.ErrProviderNotConfigured):
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	return err
}
