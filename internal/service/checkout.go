package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/client"
	"jersey-storefront/internal/dto"
	"jersey-storefront/internal/model"
	"jersey-storefront/internal/repository"
	"jersey-storefront/internal/textutil"

	"gorm.io/gorm"
)

const returnPath = "/checkout/success?session_id={CHECKOUT_SESSION_ID}"

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error)
}

type checkoutServiceImpl struct {
	db            *gorm.DB
	paymentClient client.PaymentClient
	catalog       *catalog.Catalog
	orderRepo     repository.OrderRepository
	baseURL       string
	currency      string
	logger        *slog.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	paymentClient client.PaymentClient,
	cat *catalog.Catalog,
	orderRepo repository.OrderRepository,
	baseURL string,
	currency string,
	logger *slog.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:            db,
		paymentClient: paymentClient,
		catalog:       cat,
		orderRepo:     orderRepo,
		baseURL:       strings.TrimRight(baseURL, "/"),
		currency:      currency,
		logger:        logger,
	}
}

func (s *checkoutServiceImpl) CreateCheckoutSession(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !s.paymentClient.Configured() {
		return nil, ErrProviderNotConfigured
	}
	if req == nil || len(req.CartItems) == 0 {
		return nil, ErrEmptyCart
	}

	cart, err := priceCart(s.catalog, req.CartItems)
	if err != nil {
		return nil, err
	}
	lineItems := providerLineItems(cart, s.baseURL)
	if len(lineItems) == 0 {
		// only unknown products, nothing the provider could charge for
		return nil, fmt.Errorf("%w: no purchasable items", ErrEmptyCart)
	}

	order := &model.Order{
		Status:      model.OrderStatusPending,
		AmountTotal: cart.total,
		Currency:    s.currency,
	}
	tracking := trackingParams(req.UTMParams)
	applyTracking(order, tracking)
	for _, p := range cart.items {
		order.Items = append(order.Items, p.item)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.CreateWithItems(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	orderRef := strconv.FormatUint(uint64(order.ID), 10)
	metadata := limitMetadata(tracking, maxMetadataKeys-1)
	metadata["order_id"] = orderRef

	session, err := s.paymentClient.CreateCheckoutSession(ctx, &client.CheckoutSessionRequest{
		OrderID:   order.ID,
		ReturnURL: s.baseURL + returnPath,
		LineItems: lineItems,
		Metadata:  metadata,
	})
	if err != nil {
		// the pending order is kept for manual inspection
		s.logger.Error("create checkout session", "order_id", order.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	if err := s.orderRepo.SetSessionID(ctx, order.ID, session.ID); err != nil {
		return nil, fmt.Errorf("store session id on order %d: %w", order.ID, err)
	}

	s.logger.Info("checkout session created",
		"order_id", order.ID,
		"session_id", session.ID,
		"amount_total", cart.total.StringFixed(2),
		"items", len(order.Items),
	)

	return &dto.CheckoutResponse{
		ClientSecret: session.ClientSecret,
		SessionID:    session.ID,
		OrderID:      order.ID,
		AmountTotal:  cart.total,
		Currency:     s.currency,
	}, nil
}

func (s *checkoutServiceImpl) GetSessionStatus(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	if !s.paymentClient.Configured() {
		return nil, ErrProviderNotConfigured
	}

	session, err := s.paymentClient.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	return &dto.SessionStatusResponse{
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		CustomerEmail: session.Customer.Email,
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
	}, nil
}

// trackingKeys are the attribution parameters the storefront records.
var trackingKeys = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "src", "sck"}

// trackingParams keeps only the recognised, non-empty attribution parameters.
func trackingParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(trackingKeys))
	for _, key := range trackingKeys {
		if v := textutil.Truncate(strings.TrimSpace(params[key]), maxMetadataValueLen); v != "" {
			out[key] = v
		}
	}
	return out
}

// applyTracking copies the recognised attribution parameters onto the order.
func applyTracking(order *model.Order, tracking map[string]string) {
	order.UTMSource = tracking["utm_source"]
	order.UTMMedium = tracking["utm_medium"]
	order.UTMCampaign = tracking["utm_campaign"]
	order.UTMTerm = tracking["utm_term"]
	order.UTMContent = tracking["utm_content"]
	order.Src = tracking["src"]
	order.Sck = tracking["sck"]
}
