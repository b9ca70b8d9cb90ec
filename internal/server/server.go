package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/handler"
	appmw "jersey-storefront/internal/middleware"
	"jersey-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const webhookBodyLimit = "256K"

type Server struct {
	echo            *echo.Echo
	adminCfg        config.Admin
	adminService    service.AdminService
	checkoutHandler *handler.CheckoutHandler
	webhookHandler  *handler.WebhookHandler
	adminHandler    *handler.AdminHandler
	catalogHandler  *handler.CatalogHandler
}

func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	cat *catalog.Catalog,
	checkoutService service.CheckoutService,
	reconcileService service.ReconcileService,
	adminService service.AdminService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:            e,
		adminCfg:        cfg.Admin,
		adminService:    adminService,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService, reconcileService),
		webhookHandler:  handler.NewWebhookHandler(reconcileService),
		adminHandler:    handler.NewAdminHandler(adminService, cfg.Environment.IsProduction()),
		catalogHandler:  handler.NewCatalogHandler(cat),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/products", s.catalogHandler.ListProducts)

	// -------- checkout --------
	api.POST("/create-checkout-session", s.checkoutHandler.CreateCheckoutSession)
	api.GET("/retrieve-checkout-session", s.checkoutHandler.RetrieveCheckoutSession)
	api.POST("/process-payment-success", s.checkoutHandler.ProcessPaymentSuccess)

	// -------- provider webhooks --------
	api.POST("/webhook", s.webhookHandler.StripeWebhook, middleware.BodyLimit(webhookBodyLimit))

	// -------- admin --------
	admin := api.Group("/admin")
	admin.POST("/login", s.adminHandler.Login, loginRateLimiter(s.adminCfg))
	admin.POST("/logout", s.adminHandler.Logout)

	requireAdmin := appmw.AdminSession(s.adminService)
	admin.GET("/orders", s.adminHandler.ListOrders, requireAdmin)
	admin.GET("/orders/:id/provider", s.adminHandler.ProviderLineItems, requireAdmin)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func loginRateLimiter(adminCfg config.Admin) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(adminCfg.LoginRate),
		Burst:     adminCfg.LoginBurst,
		ExpiresIn: 10 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// errorHandler renders every error as {"error": msg}. Server side failures
// never leak their text to the caller.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if code >= http.StatusInternalServerError {
			msg = http.StatusText(code)
			logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{"error": msg})
		}
		if err != nil {
			logger.Error("write error response", "error", err)
		}
	}
}
