package service

import (
	"context"
	"testing"
	"time"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminService(t *testing.T, f *checkoutFixture, cfg config.Admin) *adminServiceImpl {
	t.Helper()
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "test-secret"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	svc, err := NewAdminService(cfg, catalog.Default(), f.orderRepo, f.payments, discardLogger)
	require.NoError(t, err)
	return svc.(*adminServiceImpl)
}

func TestAdminLogin_PlainPassword(t *testing.T) {
	svc := newAdminService(t, newCheckoutFixture(t), config.Admin{Password: "hunter2"})

	_, err := svc.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := svc.Login(context.Background(), "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := svc.VerifySession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestAdminLogin_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := newAdminService(t, newCheckoutFixture(t), config.Admin{PasswordHash: string(hash), Password: "ignored"})

	_, err = svc.Login(context.Background(), "ignored")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "s3cret")
	assert.NoError(t, err)
}

func TestAdminLogin_NotConfigured(t *testing.T) {
	svc := newAdminService(t, newCheckoutFixture(t), config.Admin{})

	_, err := svc.Login(context.Background(), "")
	assert.ErrorIs(t, err, ErrAdminNotConfigured)
}

func TestNewAdminService_BadHash(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := NewAdminService(config.Admin{PasswordHash: "plaintext"}, catalog.Default(), f.orderRepo, f.payments, discardLogger)
	assert.Error(t, err)
}

func TestVerifySession_Rejects(t *testing.T) {
	svc := newAdminService(t, newCheckoutFixture(t), config.Admin{Password: "pw"})

	session, err := svc.Login(context.Background(), "pw")
	require.NoError(t, err)

	_, err = svc.VerifySession("")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = svc.VerifySession(session.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidSession)

	// signed with another secret
	other := newAdminService(t, newCheckoutFixture(t), config.Admin{Password: "pw", SessionSecret: "other"})
	_, err = other.VerifySession(session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// expired
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.VerifySession(session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifySession_RejectsNoneAlg(t *testing.T) {
	svc := newAdminService(t, newCheckoutFixture(t), config.Admin{Password: "pw"})

	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    adminIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifySession(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestListRecentOrders(t *testing.T) {
	f := newCheckoutFixture(t)
	svc := newAdminService(t, f, config.Admin{Password: "pw"})

	resp, err := f.svc.CreateCheckoutSession(context.Background(), &dto.CheckoutRequest{
		CartItems: []*dto.CartItem{jersey("M", 2)},
		UTMParams: map[string]string{"utm_source": "tiktok"},
	})
	require.NoError(t, err)

	orders, err := svc.ListRecentOrders(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, resp.OrderID, o.ID)
	assert.Equal(t, resp.SessionID, o.SessionID)
	assert.Equal(t, "99.98", o.AmountTotal)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, "tiktok", o.UTMSource)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "49.99", o.Items[0].Price)
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestProviderLineItems_DecodesCodes(t *testing.T) {
	f := newCheckoutFixture(t)
	svc := newAdminService(t, f, config.Admin{Password: "pw"})
	ctx := context.Background()

	item := jersey("M", 1)
	item.Customization = &dto.Customization{
		Type:    "player",
		Details: dto.CustomizationDetails{Name: "Lamine Yamal", Number: "10"},
		Badges:  []dto.BadgeSelection{{ID: "supercopa"}},
	}
	resp, err := f.svc.CreateCheckoutSession(ctx, &dto.CheckoutRequest{CartItems: []*dto.CartItem{item}})
	require.NoError(t, err)

	// the provider echoes back exactly what it was sent
	sent := f.payments.requests[0].LineItems[0]
	f.payments.lineItems[resp.SessionID] = []*model.ProviderLineItem{{
		Description: sent.Name,
		Quantity:    sent.Quantity,
		AmountTotal: sent.UnitAmount * sent.Quantity,
		Metadata:    sent.Metadata,
	}}

	items, err := svc.ProviderLineItems(ctx, resp.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "99.99", items[0].AmountTotal)
	assert.Equal(t, "FCB-2526-4TH-JSY-PE", items[0].SKU)
	assert.Equal(t, "M", items[0].Size)

	stored, err := f.orderRepo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	decoded := items[0].Customization
	require.NotNil(t, decoded)
	assert.Equal(t, stored.Items[0].Customization.Name, decoded.Name)
	assert.Equal(t, stored.Items[0].Customization.Number, decoded.Number)
	require.Len(t, decoded.Badges, 1)
	assert.Equal(t, stored.Items[0].Customization.Badges[0].Name, decoded.Badges[0].Name)
}

func TestProviderLineItems_UnknownOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	svc := newAdminService(t, f, config.Admin{Password: "pw"})

	_, err := svc.ProviderLineItems(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
