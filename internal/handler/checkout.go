package handler

import (
	"net/http"

	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService  service.CheckoutService
	reconcileService service.ReconcileService
}

func NewCheckoutHandler(checkoutService service.CheckoutService, reconcileService service.ReconcileService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:  checkoutService,
		reconcileService: reconcileService,
	}
}

func (h *CheckoutHandler) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.checkoutService.CreateCheckoutSession(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) RetrieveCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.checkoutService.GetSessionStatus(ctx, c.QueryParam("session_id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, status)
}

// ProcessPaymentSuccess is polled by the success page after redirect. It is
// unsigned, so it only ever trusts what the provider returns for the session.
func (h *CheckoutHandler) ProcessPaymentSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.reconcileService.ConfirmSession(ctx, req.SessionID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, resp)
}
