package handler

import (
	"io"
	"net/http"

	"jersey-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

const signatureHeader = "Stripe-Signature"

type WebhookHandler struct {
	reconcileService service.ReconcileService
}

func NewWebhookHandler(reconcileService service.ReconcileService) *WebhookHandler {
	return &WebhookHandler{reconcileService: reconcileService}
}

func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	err = h.reconcileService.HandleWebhook(ctx, body, c.Request().Header.Get(signatureHeader))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
