package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"jersey-storefront/internal/config"
	"jersey-storefront/internal/model"

	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

type PaymentClient interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*model.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
	ListSessionLineItems(ctx context.Context, sessionID string) ([]*model.ProviderLineItem, error)
	ParseWebhook(body []byte, signature string) (model.PaymentEvent, error)
}

type CheckoutLineItem struct {
	Name       string
	Image      string
	UnitAmount int64 // minor units
	Quantity   int64
	Metadata   map[string]string
}

type CheckoutSessionRequest struct {
	OrderID   uint
	ReturnURL string
	LineItems []*CheckoutLineItem
	Metadata  map[string]string
}

type stripeClientImpl struct {
	api              *stripeclient.API
	secretKey        string
	webhookSecret    string
	currency         string
	locale           string
	allowedCountries []string
}

func NewStripeClient(stripeCfg *config.Stripe) PaymentClient {
	api := &stripeclient.API{}
	api.Init(stripeCfg.SecretKey, nil)

	return &stripeClientImpl{
		api:              api,
		secretKey:        stripeCfg.SecretKey,
		webhookSecret:    stripeCfg.WebhookSecret,
		currency:         stripeCfg.Currency,
		locale:           stripeCfg.Locale,
		allowedCountries: stripeCfg.AllowedCountries,
	}
}

func (c *stripeClientImpl) Configured() bool {
	return c.secretKey != ""
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*model.CheckoutSession, error) {
	orderRef := strconv.FormatUint(uint64(req.OrderID), 10)

	params := &stripe.CheckoutSessionParams{
		UIMode:            stripe.String("embedded"),
		Mode:              stripe.String("payment"),
		ReturnURL:         stripe.String(req.ReturnURL),
		ClientReferenceID: stripe.String(orderRef),
		Locale:            stripe.String(c.locale),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(c.allowedCountries),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"order_id": orderRef},
		},
	}
	params.Context = ctx

	for _, item := range req.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripe.String(item.Name),
			Metadata: item.Metadata,
		}
		if item.Image != "" {
			productData.Images = stripe.StringSlice([]string{item.Image})
		}

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(c.currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	if sess.ClientSecret == "" {
		return nil, fmt.Errorf("stripe session %s returned no client secret", sess.ID)
	}

	return convertSession(sess), nil
}

func (c *stripeClientImpl) RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve checkout session: %w", err)
	}

	return convertSession(sess), nil
}

func (c *stripeClientImpl) ListSessionLineItems(ctx context.Context, sessionID string) ([]*model.ProviderLineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var items []*model.ProviderLineItem
	iter := c.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		item := &model.ProviderLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			AmountTotal: li.AmountTotal,
		}
		if li.Price != nil && li.Price.Product != nil {
			item.Metadata = li.Price.Product.Metadata
		}
		items = append(items, item)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe list line items: %w", err)
	}

	return items, nil
}

func (c *stripeClientImpl) ParseWebhook(body []byte, signature string) (model.PaymentEvent, error) {
	if c.webhookSecret == "" || signature == "" {
		return nil, fmt.Errorf("%w: secret or signature missing", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(body, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return convertEvent(&event)
}
