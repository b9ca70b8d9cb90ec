package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/client"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/model"
	"jersey-storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminSubject = "admin"
	adminIssuer  = "jersey-storefront"

	DefaultOrderLimit = 50
	MaxOrderLimit     = 200
)

type AdminService interface {
	Login(ctx context.Context, password string) (*AdminSession, error)
	VerifySession(token string) (*AdminClaims, error)
	ListRecentOrders(ctx context.Context, limit int) ([]*dto.AdminOrder, error)
	ProviderLineItems(ctx context.Context, orderID uint) ([]*dto.ProviderLineItem, error)
}

type AdminSession struct {
	Token     string
	ExpiresAt time.Time
}

type AdminClaims struct {
	jwt.RegisteredClaims
}

type adminServiceImpl struct {
	passwordHash  []byte
	sessionSecret []byte
	sessionTTL    time.Duration
	catalog       *catalog.Catalog
	orderRepo     repository.OrderRepository
	paymentClient client.PaymentClient
	logger        *slog.Logger
	now           func() time.Time
}

func NewAdminService(
	adminCfg config.Admin,
	cat *catalog.Catalog,
	orderRepo repository.OrderRepository,
	paymentClient client.PaymentClient,
	logger *slog.Logger,
) (AdminService, error) {
	s := &adminServiceImpl{
		sessionTTL:    adminCfg.SessionTTL,
		catalog:       cat,
		orderRepo:     orderRepo,
		paymentClient: paymentClient,
		logger:        logger,
		now:           time.Now,
	}

	switch {
	case adminCfg.PasswordHash != "":
		if _, err := bcrypt.Cost([]byte(adminCfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		s.passwordHash = []byte(adminCfg.PasswordHash)
	case adminCfg.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(adminCfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.passwordHash = hash
	default:
		logger.Warn("no admin password configured, admin login disabled")
	}

	if adminCfg.SessionSecret != "" {
		s.sessionSecret = []byte(adminCfg.SessionSecret)
	} else {
		s.sessionSecret = make([]byte, 32)
		if _, err := rand.Read(s.sessionSecret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("ADMIN_SESSION_SECRET not set, admin sessions end on restart")
	}

	if s.sessionTTL <= 0 {
		s.sessionTTL = 12 * time.Hour
	}
	return s, nil
}

func (s *adminServiceImpl) Login(ctx context.Context, password string) (*AdminSession, error) {
	if len(s.passwordHash) == 0 {
		return nil, ErrAdminNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.sessionTTL)
	claims := &AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   adminSubject,
			Issuer:    adminIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSecret)
	if err != nil {
		return nil, fmt.Errorf("sign admin session: %w", err)
	}

	return &AdminSession{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *adminServiceImpl) VerifySession(token string) (*AdminClaims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	parsed, err := jwt.ParseWithClaims(token, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.sessionSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func (s *adminServiceImpl) ListRecentOrders(ctx context.Context, limit int) ([]*dto.AdminOrder, error) {
	if limit <= 0 {
		limit = DefaultOrderLimit
	}
	if limit > MaxOrderLimit {
		limit = MaxOrderLimit
	}

	orders, err := s.orderRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	out := make([]*dto.AdminOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, toAdminOrder(o))
	}
	return out, nil
}

// ProviderLineItems reads the line items back from the provider and decodes
// their customization codes through the catalog.
func (s *adminServiceImpl) ProviderLineItems(ctx context.Context, orderID uint) ([]*dto.ProviderLineItem, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %d: %w", orderID, err)
	}
	if order.StripeSessionID == nil {
		return []*dto.ProviderLineItem{}, nil
	}
	if !s.paymentClient.Configured() {
		return nil, ErrProviderNotConfigured
	}

	items, err := s.paymentClient.ListSessionLineItems(ctx, *order.StripeSessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	out := make([]*dto.ProviderLineItem, 0, len(items))
	for _, li := range items {
		out = append(out, &dto.ProviderLineItem{
			Description:   li.Description,
			Quantity:      li.Quantity,
			AmountTotal:   decimal.New(li.AmountTotal, -2).StringFixed(2),
			SKU:           li.Metadata[catalog.MetaSKU],
			Size:          li.Metadata[catalog.MetaSize],
			Customization: s.catalog.DecodeCustomization(li.Metadata),
		})
	}
	return out, nil
}

func toAdminOrder(o *model.Order) *dto.AdminOrder {
	out := &dto.AdminOrder{
		ID:            o.ID,
		CreatedAt:     o.CreatedAt,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		AmountTotal:   o.AmountTotal.StringFixed(2),
		Currency:      o.Currency,
		Status:        string(o.Status),
		UTMSource:     o.UTMSource,
		Items:         make([]*dto.AdminOrderItem, 0, len(o.Items)),
	}
	if o.StripeSessionID != nil {
		out.SessionID = *o.StripeSessionID
	}
	if o.PaymentIntentID != nil {
		out.PaymentIntent = *o.PaymentIntentID
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, &dto.AdminOrderItem{
			SKU:           item.SKU,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			Size:          item.Size,
			Customization: item.Customization,
			Price:         item.Price.StringFixed(2),
		})
	}
	return out
}
