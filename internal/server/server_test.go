package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/client"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/middleware"
	"jersey-storefront/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckout struct {
	err  error
	last *dto.CheckoutRequest
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CheckoutResponse{ClientSecret: "cs_1_secret", SessionID: "cs_1", OrderID: 1, Currency: "eur"}, nil
}

func (f *fakeCheckout) GetSessionStatus(_ context.Context, sessionID string) (*dto.SessionStatusResponse, error) {
	if sessionID == "" {
		return nil, service.ErrMissingSessionID
	}
	return &dto.SessionStatusResponse{Status: "complete", PaymentStatus: "paid"}, nil
}

type fakeReconcile struct {
	webhookErr error
	signature  string
	body       string
}

func (f *fakeReconcile) HandleWebhook(_ context.Context, body []byte, signature string) error {
	f.body = string(body)
	f.signature = signature
	return f.webhookErr
}

func (f *fakeReconcile) ConfirmSession(_ context.Context, sessionID string) (*dto.ConfirmResponse, error) {
	if sessionID == "" {
		return nil, service.ErrMissingSessionID
	}
	return &dto.ConfirmResponse{Success: true, OrderID: 1, Status: "paid"}, nil
}

func (f *fakeReconcile) SweepStale(context.Context) (*service.SweepReport, error) {
	return &service.SweepReport{}, nil
}

type fakeAdmin struct {
	lastLimit int
}

func (f *fakeAdmin) Login(_ context.Context, password string) (*service.AdminSession, error) {
	if password != "pw" {
		return nil, service.ErrInvalidCredentials
	}
	return &service.AdminSession{Token: "good-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAdmin) VerifySession(token string) (*service.AdminClaims, error) {
	if token != "good-token" {
		return nil, service.ErrInvalidSession
	}
	return &service.AdminClaims{}, nil
}

func (f *fakeAdmin) ListRecentOrders(_ context.Context, limit int) ([]*dto.AdminOrder, error) {
	f.lastLimit = limit
	return []*dto.AdminOrder{{ID: 1, Status: "paid"}}, nil
}

func (f *fakeAdmin) ProviderLineItems(_ context.Context, orderID uint) ([]*dto.ProviderLineItem, error) {
	if orderID != 1 {
		return nil, service.ErrOrderNotFound
	}
	return []*dto.ProviderLineItem{}, nil
}

type fixture struct {
	srv       *Server
	checkout  *fakeCheckout
	reconcile *fakeReconcile
	admin     *fakeAdmin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{Admin: config.Admin{LoginRate: 100, LoginBurst: 100}}
	f := &fixture{checkout: &fakeCheckout{}, reconcile: &fakeReconcile{}, admin: &fakeAdmin{}}
	f.srv = NewServer(cfg, slog.New(slog.DiscardHandler), catalog.Default(), f.checkout, f.reconcile, f.admin)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCheckoutSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/create-checkout-session",
		`{"cartItems":[{"id":"202333090-M","size":"M","quantity":1,"price":0.01}],"utmParams":{"utm_source":"fb"}}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cs_1", resp.SessionID)
	assert.Equal(t, "fb", f.checkout.last.UTMParams["utm_source"])
}

func TestCreateCheckoutSession_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"empty cart", service.ErrEmptyCart, http.StatusBadRequest, service.ErrEmptyCart.Error()},
		{"not configured", service.ErrProviderNotConfigured, http.StatusInternalServerError, "Internal Server Error"},
		{"rejected", fmt.Errorf("%w: card_declined sk_live_xxx", service.ErrProviderRejected), http.StatusBadGateway, "Bad Gateway"},
		{"db failure", fmt.Errorf("store order in db: connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.checkout.err = tt.err

			rec := f.do(jsonRequest(http.MethodPost, "/api/create-checkout-session", `{"cartItems":[]}`))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorBody(t, rec))
		})
	}
}

func TestRetrieveCheckoutSession_MissingID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/retrieve-checkout-session", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/retrieve-checkout-session?session_id=cs_1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessPaymentSuccess(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/process-payment-success", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(jsonRequest(http.MethodPost, "/api/process-payment-success", `{"session_id":"cs_1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestWebhook(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Equal(t, "t=1,v1=abc", f.reconcile.signature)
	assert.Equal(t, `{"id":"evt_1"}`, f.reconcile.body)
}

func TestWebhook_Rejected(t *testing.T) {
	for _, err := range []error{client.ErrInvalidSignature, client.ErrMalformedEvent} {
		f := newFixture(t)
		f.reconcile.webhookErr = fmt.Errorf("%w: details", err)

		rec := f.do(httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid webhook", errorBody(t, rec))
	}
}

func TestAdmin_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorBody(t, rec))
	assert.NotContains(t, rec.Body.String(), "orders")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminCookieName, Value: "forged"})
	rec = f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_LoginThenListOrders(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = f.do(jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"pw"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]
	assert.Equal(t, middleware.AdminCookieName, session.Name)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
	assert.False(t, session.Secure, "only secure in production")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?limit=500", nil)
	req.AddCookie(session)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, f.admin.lastLimit)
	assert.Contains(t, rec.Body.String(), `"status":"paid"`)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders?limit=abc", nil)
	req.AddCookie(session)
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders/7/provider", nil)
	req.AddCookie(session)
	assert.Equal(t, http.StatusNotFound, f.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/orders/1/provider", nil)
	req.AddCookie(session)
	assert.Equal(t, http.StatusOK, f.do(req).Code)
}

func TestAdmin_Logout(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAdmin_LoginRateLimited(t *testing.T) {
	cfg := &config.Config{Admin: config.Admin{LoginRate: 0.001, LoginBurst: 2}}
	srv := NewServer(cfg, slog.New(slog.DiscardHandler), catalog.Default(), &fakeCheckout{}, &fakeReconcile{}, &fakeAdmin{})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/admin/login", `{"password":"nope"}`))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "202333090")
}
