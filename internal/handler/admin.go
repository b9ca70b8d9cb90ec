package handler

import (
	"net/http"
	"strconv"

	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/middleware"
	"jersey-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminService service.AdminService
	secureCookie bool
}

func NewAdminHandler(adminService service.AdminService, secureCookie bool) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		secureCookie: secureCookie,
	}
}

func (h *AdminHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	session, err := h.adminService.Login(ctx, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, &dto.LoginResponse{ExpiresAt: session.ExpiresAt})
}

func (h *AdminHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	orders, err := h.adminService.ListRecentOrders(ctx, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

// ProviderLineItems shows an order the way the payment provider holds it.
func (h *AdminHandler) ProviderLineItems(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	items, err := h.adminService.ProviderLineItems(ctx, uint(orderID))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
