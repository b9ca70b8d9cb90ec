package middleware

import (
	"net/http"

	"jersey-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	AdminCookieName = "admin_session"
	adminClaimsKey  = "admin_claims"
)

// AdminSession rejects requests without a valid admin session cookie.
func AdminSession(adminService service.AdminService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AdminCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			claims, err := adminService.VerifySession(cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			c.Set(adminClaimsKey, claims)
			return next(c)
		}
	}
}
