package dto

import (
	"time"

	"jersey-storefront/internal/model"

	"github.com/shopspring/decimal"
)

// ---- checkout ----

type BadgeSelection struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	Price float64 `json:"price,omitempty"` // ignored, priced from catalog
}

type CustomizationDetails struct {
	Name   string     `json:"name"`
	Number FlexString `json:"number"`
}

type Customization struct {
	Type         string               `json:"type"` // player | custom
	PrintingType string               `json:"printingType"`
	Details      CustomizationDetails `json:"details"`
	Badge        *BadgeSelection      `json:"badge,omitempty"`
	Badges       []BadgeSelection     `json:"badges,omitempty"`
}

type CartItem struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Price         float64        `json:"price"` // ignored, priced from catalog
	Image         string         `json:"image"`
	Size          string         `json:"size"`
	Quantity      int            `json:"quantity"`
	Customization *Customization `json:"customization,omitempty"`
}

type CheckoutRequest struct {
	CartItems []*CartItem       `json:"cartItems"`
	UTMParams map[string]string `json:"utmParams"`
	Total     *float64          `json:"total,omitempty"` // ignored
}

type CheckoutResponse struct {
	ClientSecret string          `json:"clientSecret"`
	SessionID    string          `json:"sessionId"`
	OrderID      uint            `json:"orderId"`
	AmountTotal  decimal.Decimal `json:"amountTotal"`
	Currency     string          `json:"currency"`
}

type SessionStatusResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

type ConfirmRequest struct {
	SessionID string `json:"session_id"`
}

type ConfirmResponse struct {
	Success bool   `json:"success"`
	OrderID uint   `json:"order_id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ---- admin ----

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type AdminOrderItem struct {
	SKU           string               `json:"sku"`
	ProductName   string               `json:"product_name"`
	Quantity      int                  `json:"quantity"`
	Size          *string              `json:"size"`
	Customization *model.Customization `json:"customization"`
	Price         string               `json:"price"`
}

type AdminOrder struct {
	ID            uint              `json:"id"`
	SessionID     string            `json:"session_id"`
	PaymentIntent string            `json:"payment_intent"`
	CreatedAt     time.Time         `json:"created_at"`
	CustomerEmail string            `json:"customer_email"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	AmountTotal   string            `json:"amount_total"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	UTMSource     string            `json:"utm_source"`
	Items         []*AdminOrderItem `json:"items"`
}

type ProviderLineItem struct {
	Description   string               `json:"description"`
	Quantity      int64                `json:"quantity"`
	AmountTotal   string               `json:"amount_total"`
	SKU           string               `json:"sku"`
	Size          string               `json:"size"`
	Customization *model.Customization `json:"customization"`
}
